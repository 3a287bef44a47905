// Package receipt handles receipt image ingestion: decoding the uploaded
// picture, transcoding it to a compact format, deriving the storage key, and
// the HTTP endpoints that attach and detach receipts on fuel logs.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// ContentType is the MIME type of transcoded receipt images.
const ContentType = "image/webp"

// quality is the lossy WebP encode quality for stored receipts.
const quality = 80

// ErrInvalidImage is returned when the upload does not decode as a supported
// raster image (JPEG, PNG, GIF, WebP).
var ErrInvalidImage = errors.New("unsupported or corrupt image")

// ErrTranscodeFailed is returned when re-encoding the decoded image fails.
var ErrTranscodeFailed = errors.New("image transcode failed")

// Ingest decodes raw image bytes and re-encodes them as lossy WebP. The
// transform is one-way; the original bytes are discarded. Ingest performs no
// I/O; nothing is written anywhere until it has succeeded.
func Ingest(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscodeFailed, err)
	}
	return buf.Bytes(), nil
}

// ObjectKey derives the storage key for a receipt:
//
//	receipts/{ownerID}/{vehicleID}/{recordID}-{timestamp}.webp
//
// When no fuel log exists yet, pass an empty recordID and a generated
// placeholder is used. The millisecond timestamp keeps repeated uploads for
// the same record from colliding.
func ObjectKey(ownerID, vehicleID, recordID string, now time.Time) string {
	if recordID == "" {
		recordID = uuid.NewString()
	}
	return fmt.Sprintf("receipts/%s/%s/%s-%d.webp", ownerID, vehicleID, recordID, now.UnixMilli())
}
