package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// ObjectStore keeps both encodings as objects in one bucket.
type ObjectStore struct {
	client     *minio.Client
	bucketName string
	prefix     string
	log        *zap.Logger
}

// MinioOptions groups the connection settings.
type MinioOptions struct {
	Endpoint   string
	Region     string
	BucketName string
	AccessKey  string
	SecretKey  string
	Prefix     string
	UseSSL     bool
}

// NewObjectStore buat koneksi MinIO dan pastikan bucket ada
func NewObjectStore(ctx context.Context, opts MinioOptions, log *zap.Logger) (*ObjectStore, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, opts.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", opts.BucketName, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.BucketName, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", opts.BucketName, err)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &ObjectStore{
		client:     cli,
		bucketName: opts.BucketName,
		prefix:     opts.Prefix,
		log:        log.Named("objectstore"),
	}, nil
}

// Persist implements analysis.ArtifactStore. A failed bundle upload removes
// the document object again.
func (s *ObjectStore) Persist(ctx context.Context, r *analysis.Result) error {
	if r == nil || r.ArtifactID == "" {
		return &analysis.PersistenceError{Encoding: analysis.FormatDocument, Err: fmt.Errorf("missing artifact id")}
	}
	doc, bundle, err := encodeBoth(r)
	if err != nil {
		return err
	}

	docKey := s.key(r.ArtifactID, analysis.FormatDocument)
	if err := s.put(ctx, docKey, doc, analysis.FormatDocument); err != nil {
		return &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatDocument, Err: err}
	}
	if err := s.put(ctx, s.key(r.ArtifactID, analysis.FormatBundle), bundle, analysis.FormatBundle); err != nil {
		if rmErr := s.client.RemoveObject(context.WithoutCancel(ctx), s.bucketName, docKey, minio.RemoveObjectOptions{}); rmErr != nil {
			s.log.Warn("failed to remove orphaned document object",
				zap.String("key", docKey), zap.Error(rmErr))
		}
		return &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatBundle, Err: err}
	}
	return nil
}

// Retrieve implements analysis.ArtifactStore.
func (s *ObjectStore) Retrieve(ctx context.Context, id analysis.ArtifactID, f analysis.Format) (*analysis.Download, error) {
	if f != analysis.FormatDocument && f != analysis.FormatBundle {
		return nil, analysis.ErrArtifactNotFound
	}
	key := s.key(id, f)

	info, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, analysis.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("stat object %s: %w", key, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, analysis.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	return &analysis.Download{
		Body:        obj,
		Size:        info.Size,
		ContentType: f.ContentType(),
		FileName:    id.FileName(f),
	}, nil
}

// Check verifies the bucket is reachable.
func (s *ObjectStore) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

func (s *ObjectStore) put(ctx context.Context, key string, data []byte, f analysis.Format) error {
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: f.ContentType(),
	})
	return err
}

func (s *ObjectStore) key(id analysis.ArtifactID, f analysis.Format) string {
	return path.Join(s.prefix, id.FileName(f))
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
