package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	MaxImageSize    = 3 << 20
	MaxDocumentSize = 10 << 20
	MaxImageWidth   = 1600
	jpegQuality     = 85
)

// Kind of upload, used for metrics.
const (
	KindImage    = "image"
	KindDocument = "document"
)

const (
	typeJPEG = "image/jpeg"
	typePNG  = "image/png"
	typeGIF  = "image/gif"
	typeWebP = "image/webp"
	typeSVG  = "image/svg+xml"
	typePDF  = "application/pdf"
)

// Library validates and processes uploads before handing them to a Backend.
type Library struct {
	backend  Backend
	logger   *zap.Logger
	tracer   trace.Tracer
	now      func() time.Time
	onUpload func(kind string, size int64)
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger used for upload and delete events.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) { lib.logger = l }
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(lib *Library) { lib.now = now }
}

// WithUploadHook registers fn to run after every stored upload.
func WithUploadHook(fn func(kind string, size int64)) Option {
	return func(lib *Library) { lib.onUpload = fn }
}

// NewLibrary returns a Library storing uploads in b.
func NewLibrary(b Backend, opts ...Option) *Library {
	lib := &Library{
		backend: b,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer("github.com/digitalbiztech/bizsite/media"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// FileName builds the stored name for an upload:
// <unix-millis>-<original with unsafe characters replaced by '-'>.
func FileName(now time.Time, original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + unsafeChars.ReplaceAllString(base, "-")
}

// URL is the public path for a stored file name.
func URL(name string) string {
	return "/uploads/" + name
}

// UploadImage stores a jpeg, png, gif, webp or svg image of at most
// MaxImageSize bytes. JPEG and PNG images wider than MaxImageWidth are
// scaled down and re-encoded in their own format.
func (l *Library) UploadImage(ctx context.Context, originalName string, r io.Reader) (Object, error) {
	ctx, span := l.tracer.Start(ctx, "media.upload_image", trace.WithAttributes(attribute.String("media.original_name", originalName)))
	defer span.End()

	data, err := readLimited(r, MaxImageSize)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Object{}, err
	}

	obj := Object{Name: FileName(l.now(), originalName), UploadedAt: l.now().UTC()}
	obj.ContentType = detectImageType(originalName, data)

	switch obj.ContentType {
	case typeJPEG, typePNG:
		data, obj.Width, obj.Height, err = resize(data, obj.ContentType)
	case typeGIF:
		obj.Width, obj.Height, err = dimensions(data, gif.DecodeConfig)
	case typeWebP:
		obj.Width, obj.Height, err = dimensions(data, webp.DecodeConfig)
	case typeSVG:
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, obj.ContentType)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Object{}, err
	}

	return l.store(ctx, span, KindImage, obj, data)
}

// UploadDocument stores a PDF of at most MaxDocumentSize bytes.
func (l *Library) UploadDocument(ctx context.Context, originalName string, r io.Reader) (Object, error) {
	ctx, span := l.tracer.Start(ctx, "media.upload_document", trace.WithAttributes(attribute.String("media.original_name", originalName)))
	defer span.End()

	data, err := readLimited(r, MaxDocumentSize)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Object{}, err
	}
	if http.DetectContentType(data) != typePDF {
		err := fmt.Errorf("%w: only PDF documents are accepted", ErrUnsupportedType)
		span.SetStatus(codes.Error, err.Error())
		return Object{}, err
	}

	obj := Object{
		Name:        FileName(l.now(), originalName),
		ContentType: typePDF,
		UploadedAt:  l.now().UTC(),
	}
	return l.store(ctx, span, KindDocument, obj, data)
}

func (l *Library) store(ctx context.Context, span trace.Span, kind string, obj Object, data []byte) (Object, error) {
	obj.Size = int64(len(data))
	span.SetAttributes(
		attribute.String("media.name", obj.Name),
		attribute.String("media.content_type", obj.ContentType),
		attribute.Int64("media.size", obj.Size),
	)
	if err := l.backend.Put(ctx, obj, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend put")
		return Object{}, err
	}
	l.logger.Info("media stored",
		zap.String("name", obj.Name),
		zap.String("type", obj.ContentType),
		zap.Int64("size", obj.Size))
	if l.onUpload != nil {
		l.onUpload(kind, obj.Size)
	}
	return obj, nil
}

// Open returns the stored bytes and metadata of name.
func (l *Library) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	if !validName(name) {
		return nil, Object{}, ErrNotFound
	}
	return l.backend.Open(ctx, name)
}

// Delete removes name from the backend.
func (l *Library) Delete(ctx context.Context, name string) error {
	if !validName(name) {
		return ErrNotFound
	}
	if err := l.backend.Delete(ctx, name); err != nil {
		return err
	}
	l.logger.Info("media deleted", zap.String("name", name))
	return nil
}

// List returns every stored object, newest first.
func (l *Library) List(ctx context.Context) ([]Object, error) {
	return l.backend.List(ctx)
}

// NameFromURL returns the stored name for a /uploads/ URL, or "" when url
// does not point at the library.
func NameFromURL(url string) string {
	name, ok := strings.CutPrefix(url, "/uploads/")
	if !ok || !validName(name) {
		return ""
	}
	return name
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && name != "." && name != ".." &&
		!unsafeChars.MatchString(name)
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w (max %d MB)", ErrTooLarge, max>>20)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedType)
	}
	return data, nil
}

func detectImageType(name string, data []byte) string {
	ct := http.DetectContentType(data)
	switch ct {
	case typeJPEG, typePNG, typeGIF, typeWebP:
		return ct
	}
	if strings.EqualFold(filepath.Ext(name), ".svg") && bytes.Contains(data[:min(len(data), 1024)], []byte("<svg")) {
		return typeSVG
	}
	return ct
}

func dimensions(data []byte, decode func(io.Reader) (image.Config, error)) (int, int, error) {
	cfg, err := decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, nil
}

// resize scales images wider than MaxImageWidth and re-encodes them.
// Smaller images are returned unchanged.
func resize(data []byte, contentType string) ([]byte, int, int, error) {
	var (
		img image.Image
		err error
	)
	if contentType == typeJPEG {
		img, err = jpeg.Decode(bytes.NewReader(data))
	} else {
		img, err = png.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= MaxImageWidth {
		return data, w, h, nil
	}

	newH := h * MaxImageWidth / w
	if newH < 1 {
		newH = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, MaxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if contentType == typeJPEG {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, dst)
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("encode %s: %w", contentType, err)
	}
	return buf.Bytes(), MaxImageWidth, newH, nil
}
