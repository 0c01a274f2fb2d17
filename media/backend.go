// Package media stores uploaded images and documents and serves them back
// under /uploads/.
package media

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotFound        = errors.New("media: not found")
	ErrTooLarge        = errors.New("media: file too large")
	ErrUnsupportedType = errors.New("media: unsupported file type")
	ErrDecode          = errors.New("media: cannot decode image")
)

// Object describes a stored file. Width and Height are zero for documents
// and for backends that do not keep them.
type Object struct {
	Name        string
	ContentType string
	Size        int64
	Width       int
	Height      int
	UploadedAt  time.Time
}

// URL is the public path of the object.
func (o Object) URL() string { return URL(o.Name) }

// Backend persists media bytes.
type Backend interface {
	Put(ctx context.Context, obj Object, data []byte) error
	Open(ctx context.Context, name string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]Object, error)
}
