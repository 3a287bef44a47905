package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	s := &MinioStorage{publicBase: "http://localhost:9000/receipts"}

	url := s.PublicURL("receipts/owner-1/car-1/log-1.webp")
	assert.Equal(t, "http://localhost:9000/receipts/receipts/owner-1/car-1/log-1.webp", url)
}

func TestKeyFromURL_RoundTrip(t *testing.T) {
	s := &MinioStorage{publicBase: "http://localhost:9000/receipts"}

	key := "receipts/owner-1/car-1/log-1-1756400000000.webp"
	got, err := s.KeyFromURL(s.PublicURL(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestKeyFromURL_StripsBase(t *testing.T) {
	s := &MinioStorage{publicBase: "http://localhost:9000/receipts"}

	got, err := s.KeyFromURL("http://localhost:9000/receipts/a/b.webp")
	require.NoError(t, err)
	assert.Equal(t, "a/b.webp", got)
}

func TestKeyFromURL_ForeignURL(t *testing.T) {
	s := &MinioStorage{publicBase: "http://localhost:9000/receipts"}

	_, err := s.KeyFromURL("https://elsewhere.example/receipts/a/b.webp")
	assert.ErrorIs(t, err, ErrNotStoreURL)
}

func TestKeyFromURL_BaseOnly(t *testing.T) {
	s := &MinioStorage{publicBase: "http://localhost:9000/receipts"}

	_, err := s.KeyFromURL("http://localhost:9000/receipts/")
	assert.ErrorIs(t, err, ErrNotStoreURL)
}
