package output

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/guide"
)

// ObjectConfig holds S3-compatible storage settings.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	Prefix    string
}

// objectStore is the subset of *minio.Client used by ObjectSink.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, name string, reader io.Reader, size int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ObjectSink uploads each guide as <Prefix>/<ALPHA3>.json to a bucket.
type ObjectSink struct {
	store  objectStore
	bucket string
	prefix string
	logger *slog.Logger
}

// NewObjectSink connects to the storage endpoint. No request is made until
// the first Write.
func NewObjectSink(cfg ObjectConfig, logger *slog.Logger) (*ObjectSink, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "ObjectSink", "NewObjectSink", "endpoint and bucket check")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.WrapInvalid(err, "ObjectSink", "NewObjectSink", "minio client")
	}

	return newObjectSink(mc, cfg.Bucket, cfg.Prefix, logger), nil
}

func newObjectSink(store objectStore, bucket, prefix string, logger *slog.Logger) *ObjectSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectSink{store: store, bucket: bucket, prefix: prefix, logger: logger}
}

// Write implements Sink. The bucket is created when missing.
func (o *ObjectSink) Write(ctx context.Context, guides []guide.Regional) error {
	exists, err := o.store.BucketExists(ctx, o.bucket)
	if err != nil {
		return errors.WrapTransient(err, "ObjectSink", "Write", "check bucket "+o.bucket)
	}
	if !exists {
		if err := o.store.MakeBucket(ctx, o.bucket, minio.MakeBucketOptions{}); err != nil {
			return errors.WrapTransient(err, "ObjectSink", "Write", "create bucket "+o.bucket)
		}
		o.logger.Info("Bucket created", "bucket", o.bucket)
	}

	for _, g := range guides {
		data, err := Encode(g)
		if err != nil {
			return errors.WrapInvalid(err, "ObjectSink", "Write", "encode "+g.Code.Alpha3)
		}

		name := path.Join(o.prefix, Name(g))
		_, err = o.store.PutObject(ctx, o.bucket, name, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"})
		if err != nil {
			return errors.WrapTransient(err, "ObjectSink", "Write", "upload "+name)
		}
		o.logger.Info("Regional guide uploaded", "alpha3", g.Code.Alpha3, "bucket", o.bucket, "name", name)
	}
	return nil
}
