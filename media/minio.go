package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig holds connection settings for an S3-compatible bucket.
type MinIOConfig struct {
	Endpoint  string `env:"ENDPOINT"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Bucket    string `env:"BUCKET" envDefault:"bizsite-media"`
	UseSSL    bool   `env:"USE_SSL"`
}

// MinIOBackend stores media in an S3-compatible bucket. It is safe for
// concurrent use.
type MinIOBackend struct {
	client *minio.Client
	bucket string
}

// NewMinIOBackend connects to the bucket, creating it when missing.
func NewMinIOBackend(ctx context.Context, cfg MinIOConfig) (*MinIOBackend, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinIOBackend{client: cli, bucket: cfg.Bucket}, nil
}

const (
	metaWidth  = "Width"
	metaHeight = "Height"
)

// Put uploads data, recording image dimensions as object metadata.
func (m *MinIOBackend) Put(ctx context.Context, obj Object, data []byte) error {
	meta := map[string]string{}
	if obj.Width > 0 {
		meta[metaWidth] = strconv.Itoa(obj.Width)
		meta[metaHeight] = strconv.Itoa(obj.Height)
	}
	_, err := m.client.PutObject(ctx, m.bucket, obj.Name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: obj.ContentType, UserMetadata: meta})
	if err != nil {
		return fmt.Errorf("media put %s: %w", obj.Name, err)
	}
	return nil
}

// Open streams the object and reads its dimensions back from metadata.
func (m *MinIOBackend) Open(ctx context.Context, name string) (io.ReadCloser, Object, error) {
	o, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, Object{}, m.mapErr(name, err)
	}
	st, err := o.Stat()
	if err != nil {
		o.Close()
		return nil, Object{}, m.mapErr(name, err)
	}
	obj := Object{
		Name:        name,
		ContentType: st.ContentType,
		Size:        st.Size,
		UploadedAt:  st.LastModified,
	}
	obj.Width, _ = strconv.Atoi(st.UserMetadata[metaWidth])
	obj.Height, _ = strconv.Atoi(st.UserMetadata[metaHeight])
	return o, obj, nil
}

// Delete removes the object, returning ErrNotFound when it is absent.
func (m *MinIOBackend) Delete(ctx context.Context, name string) error {
	if _, err := m.client.StatObject(ctx, m.bucket, name, minio.StatObjectOptions{}); err != nil {
		return m.mapErr(name, err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media delete %s: %w", name, err)
	}
	return nil
}

// List returns objects newest first.
func (m *MinIOBackend) List(ctx context.Context) ([]Object, error) {
	var out []Object
	for info := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, fmt.Errorf("media list: %w", info.Err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = mime.TypeByExtension(path.Ext(info.Key))
		}
		out = append(out, Object{
			Name:        info.Key,
			ContentType: ct,
			Size:        info.Size,
			UploadedAt:  info.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *MinIOBackend) mapErr(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("media %s: %w", name, err)
}
