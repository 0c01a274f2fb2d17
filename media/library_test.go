package media

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var fixedNow = time.UnixMilli(1700000000123)

func setupTestLibrary(t *testing.T, opts ...Option) *Library {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	backend, err := NewSQLiteBackend(db)
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLibrary(backend, opts...)
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"logo.png", "1700000000123-logo.png"},
		{"My Photo (1).JPG", "1700000000123-My-Photo--1-.JPG"},
		{"../../etc/passwd", "1700000000123-passwd"},
		{`C:\Users\me\résumé.pdf`, "1700000000123-r-sum-.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(fixedNow, tt.in); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameFromURL(t *testing.T) {
	assert.Equal(t, "1-a.png", NameFromURL("/uploads/1-a.png"))
	assert.Empty(t, NameFromURL("https://cdn.example.com/a.png"))
	assert.Empty(t, NameFromURL("/uploads/../secret"))
}

func TestUploadLargePNGIsResized(t *testing.T) {
	var uploads []string
	lib := setupTestLibrary(t, WithUploadHook(func(kind string, _ int64) { uploads = append(uploads, kind) }))
	ctx := context.Background()

	obj, err := lib.UploadImage(ctx, "wide.png", bytes.NewReader(encodePNG(t, 2000, 1000)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, 1600, obj.Width)
	assert.Equal(t, 800, obj.Height)
	assert.Equal(t, "/uploads/1700000000123-wide.png", obj.URL())
	assert.Equal(t, []string{KindImage}, uploads)

	rc, stored, err := lib.Open(ctx, obj.Name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, obj.Size, stored.Size)
}

func TestUploadLargeJPEGKeepsFormat(t *testing.T) {
	lib := setupTestLibrary(t)

	obj, err := lib.UploadImage(context.Background(), "photo.jpg", bytes.NewReader(encodeJPEG(t, 3200, 1600)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, 1600, obj.Width)
	assert.Equal(t, 800, obj.Height)
}

func TestUploadSmallImageUnchanged(t *testing.T) {
	lib := setupTestLibrary(t)
	ctx := context.Background()
	original := encodePNG(t, 300, 200)

	obj, err := lib.UploadImage(ctx, "small.png", bytes.NewReader(original))
	require.NoError(t, err)
	assert.Equal(t, 300, obj.Width)

	rc, _, err := lib.Open(ctx, obj.Name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

func TestUploadSVG(t *testing.T) {
	lib := setupTestLibrary(t)
	svg := `<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`

	obj, err := lib.UploadImage(context.Background(), "icon.svg", strings.NewReader(svg))
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", obj.ContentType)
}

func TestUploadImageRejections(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		wantErr error
	}{
		{"too large", "big.png", bytes.Repeat([]byte{0}, MaxImageSize+1), ErrTooLarge},
		{"text", "notes.txt", []byte("hello"), ErrUnsupportedType},
		{"svg extension without svg", "fake.svg", []byte("hello"), ErrUnsupportedType},
		{"empty", "empty.png", nil, ErrUnsupportedType},
		{"truncated png", "broken.png", []byte("\x89PNG\r\n\x1a\n0000"), ErrDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := setupTestLibrary(t)
			_, err := lib.UploadImage(context.Background(), tt.file, bytes.NewReader(tt.data))
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)

			objs, err := lib.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, objs)
		})
	}
}

func TestUploadDocument(t *testing.T) {
	lib := setupTestLibrary(t)
	ctx := context.Background()

	obj, err := lib.UploadDocument(ctx, "privacy policy.pdf", strings.NewReader("%PDF-1.4\n%%EOF"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, "1700000000123-privacy-policy.pdf", obj.Name)

	_, err = lib.UploadDocument(ctx, "policy.pdf", strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = lib.UploadDocument(ctx, "huge.pdf", io.MultiReader(strings.NewReader("%PDF-"), bytes.NewReader(make([]byte, MaxDocumentSize))))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDeleteAndList(t *testing.T) {
	lib := setupTestLibrary(t)
	ctx := context.Background()

	obj, err := lib.UploadImage(ctx, "a.png", bytes.NewReader(encodePNG(t, 10, 10)))
	require.NoError(t, err)

	objs, err := lib.List(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, obj.Name, objs[0].Name)
	assert.Equal(t, 10, objs[0].Width)

	require.NoError(t, lib.Delete(ctx, obj.Name))
	assert.ErrorIs(t, lib.Delete(ctx, obj.Name), ErrNotFound)

	_, _, err = lib.Open(ctx, obj.Name)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = lib.Open(ctx, "../kv")
	assert.ErrorIs(t, err, ErrNotFound)
}
