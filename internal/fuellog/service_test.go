package fuellog

import (
	"context"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelbook/service/internal/storage"
	"github.com/fuelbook/service/internal/vehicle"
)

const testPublicBase = "http://store.local/receipts"

// fakeRepo is an in-memory Store that appends every mutation to calls so
// tests can assert on side-effect ordering.
type fakeRepo struct {
	recs  map[string]*Record
	calls *[]string
}

func newFakeRepo(calls *[]string) *fakeRepo {
	return &fakeRepo{recs: map[string]*Record{}, calls: calls}
}

func (f *fakeRepo) Create(_ context.Context, rec *Record) (*Record, error) {
	stored := *rec
	stored.ID = uuid.NewString()
	f.recs[stored.ID] = &stored
	*f.calls = append(*f.calls, "repo.create")
	return &stored, nil
}

func (f *fakeRepo) GetByID(_ context.Context, ownerID, id string) (*Record, error) {
	rec, ok := f.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (f *fakeRepo) List(_ context.Context, ownerID, vehicleID string) ([]*Record, error) {
	var out []*Record
	for _, rec := range f.recs {
		if rec.OwnerID != ownerID {
			continue
		}
		if vehicleID != "" && rec.VehicleID != vehicleID {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeRepo) PreviousByOdometer(_ context.Context, ownerID, vehicleID string, odometer float64) (*Record, error) {
	var prev *Record
	for _, rec := range f.recs {
		if rec.OwnerID != ownerID || rec.VehicleID != vehicleID || rec.OdometerReading >= odometer {
			continue
		}
		if prev == nil || rec.OdometerReading > prev.OdometerReading {
			prev = rec
		}
	}
	return prev, nil
}

func (f *fakeRepo) SetReceiptURL(_ context.Context, ownerID, id string, url *string) error {
	rec, ok := f.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return ErrNotFound
	}
	rec.ReceiptURL = url
	return nil
}

func (f *fakeRepo) SetLocked(_ context.Context, ownerID, id string, locked bool) error {
	rec, ok := f.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return ErrNotFound
	}
	rec.IsLocked = locked
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, ownerID, id string) error {
	rec, ok := f.recs[id]
	if !ok || rec.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(f.recs, id)
	*f.calls = append(*f.calls, "repo.delete")
	return nil
}

// fakeVehicles resolves a fixed set of vehicles.
type fakeVehicles struct {
	owned map[string]string // vehicle id -> owner id
}

func (f *fakeVehicles) GetByID(_ context.Context, ownerID, id string) (*vehicle.Vehicle, error) {
	if owner, ok := f.owned[id]; ok && owner == ownerID {
		return &vehicle.Vehicle{ID: id, OwnerID: ownerID}, nil
	}
	return nil, vehicle.ErrNotFound
}

// fakeStorage appends delete calls to the shared calls log.
type fakeStorage struct {
	calls *[]string
}

func (f *fakeStorage) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	_, _ = io.ReadAll(r)
	return f.PublicURL(key), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	*f.calls = append(*f.calls, "store.delete:"+key)
	return nil
}

func (f *fakeStorage) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return f.PublicURL(key) + "?signed", nil
}

func (f *fakeStorage) PublicURL(key string) string { return testPublicBase + "/" + key }

func (f *fakeStorage) KeyFromURL(rawURL string) (string, error) {
	key, ok := strings.CutPrefix(rawURL, testPublicBase+"/")
	if !ok || key == "" {
		return "", storage.ErrNotStoreURL
	}
	return key, nil
}

func newTestService() (*Service, *fakeRepo, *[]string) {
	calls := &[]string{}
	repo := newFakeRepo(calls)
	vehicles := &fakeVehicles{owned: map[string]string{"car-1": "owner-1"}}
	svc := NewService(repo, vehicles, &fakeStorage{calls: calls})
	return svc, repo, calls
}

func day(n int) time.Time {
	return time.Date(2026, 8, n, 0, 0, 0, 0, time.UTC)
}

func TestCreate_DerivesTotalCostAndNoEfficiencyWithoutPrior(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID:       "car-1",
		Date:            day(1),
		OdometerReading: 45000,
		Liters:          40,
		PricePerLiter:   20,
	})
	require.NoError(t, err)

	assert.Equal(t, 800.0, rec.TotalCost)
	assert.Nil(t, rec.KmPerLiter, "first record for a vehicle has no efficiency")
	assert.Nil(t, rec.DistanceTraveled)
}

func TestCreate_DerivesEfficiencyFromPreviousOdometer(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 45000, Liters: 40, PricePerLiter: 20,
	})
	require.NoError(t, err)

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(10), OdometerReading: 45500, Liters: 50, PricePerLiter: 20,
	})
	require.NoError(t, err)

	require.NotNil(t, rec.DistanceTraveled)
	require.NotNil(t, rec.KmPerLiter)
	assert.Equal(t, 500.0, *rec.DistanceTraveled)
	assert.Equal(t, 10.0, *rec.KmPerLiter)
}

// A backdated entry must still pair with its physical predecessor: the
// previous record is chosen by odometer reading, not by date.
func TestCreate_OdometerOrderBeatsDateOrder(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 1000, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(20), OdometerReading: 2000, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)

	// backdated between the two by date, between them by odometer too
	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(10), OdometerReading: 1500, Liters: 25, PricePerLiter: 20,
	})
	require.NoError(t, err)

	require.NotNil(t, rec.KmPerLiter)
	assert.Equal(t, 500.0, *rec.DistanceTraveled, "pairs with odometer 1000, not 2000")
	assert.Equal(t, 20.0, *rec.KmPerLiter)
}

func TestCreate_WorkDistanceZeroUnlessWorkTravel(t *testing.T) {
	svc, _, _ := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
		IsWorkTravel: false, WorkDistance: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.WorkDistance)

	rec, err = svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(2), OdometerReading: 200, Liters: 10, PricePerLiter: 20,
		IsWorkTravel: true, WorkDistance: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, 250.0, rec.WorkDistance)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name string
		p    CreateParams
	}{
		{"missing vehicle", CreateParams{Date: day(1), Liters: 10, PricePerLiter: 1}},
		{"zero liters", CreateParams{VehicleID: "car-1", Date: day(1), Liters: 0, PricePerLiter: 1}},
		{"negative price", CreateParams{VehicleID: "car-1", Date: day(1), Liters: 10, PricePerLiter: -1}},
		{"zero date", CreateParams{VehicleID: "car-1", Liters: 10, PricePerLiter: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "owner-1", tc.p)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestCreate_UnownedVehicleRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "intruder", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
	})
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestDelete_LockedRecordRefused(t *testing.T) {
	svc, repo, calls := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetLocked(context.Background(), "owner-1", rec.ID, true))

	err = svc.Delete(context.Background(), "owner-1", rec.ID)
	assert.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, repo.recs, rec.ID, "locked record must survive")
	assert.NotContains(t, *calls, "repo.delete")

	// unlock, then deletion goes through
	require.NoError(t, svc.SetLocked(context.Background(), "owner-1", rec.ID, false))
	require.NoError(t, svc.Delete(context.Background(), "owner-1", rec.ID))
	assert.NotContains(t, repo.recs, rec.ID)
}

func TestDelete_RemovesReceiptObjectBeforeRecord(t *testing.T) {
	svc, _, calls := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)

	key := "receipts/owner-1/car-1/" + rec.ID + "-123.webp"
	require.NoError(t, svc.AttachReceipt(context.Background(), "owner-1", rec.ID, testPublicBase+"/"+key))

	*calls = (*calls)[:0]
	require.NoError(t, svc.Delete(context.Background(), "owner-1", rec.ID))

	require.Equal(t, []string{"store.delete:" + key, "repo.delete"}, *calls,
		"object deletion must use the exact key and precede the record deletion")
}

func TestDelete_WithoutReceiptTouchesOnlyTheRecord(t *testing.T) {
	svc, _, calls := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)

	*calls = (*calls)[:0]
	require.NoError(t, svc.Delete(context.Background(), "owner-1", rec.ID))
	assert.Equal(t, []string{"repo.delete"}, *calls)
}

func TestAttachAndClearReceipt(t *testing.T) {
	svc, repo, _ := newTestService()

	rec, err := svc.Create(context.Background(), "owner-1", CreateParams{
		VehicleID: "car-1", Date: day(1), OdometerReading: 100, Liters: 10, PricePerLiter: 20,
	})
	require.NoError(t, err)

	url := testPublicBase + "/receipts/owner-1/car-1/x.webp"
	require.NoError(t, svc.AttachReceipt(context.Background(), "owner-1", rec.ID, url))
	require.NotNil(t, repo.recs[rec.ID].ReceiptURL)
	assert.Equal(t, url, *repo.recs[rec.ID].ReceiptURL)

	require.NoError(t, svc.ClearReceipt(context.Background(), "owner-1", rec.ID))
	assert.Nil(t, repo.recs[rec.ID].ReceiptURL)
}
