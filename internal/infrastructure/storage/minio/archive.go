// Package minio archives exported quote PDFs in S3-compatible object storage
// and hands out presigned download links.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/turtacn/VitaQuote/internal/config"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/pkg/errors"
)

// objectAPI is the slice of the MinIO client the archive needs; tests supply
// a fake.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// Archive stores quote PDFs under quotes/<year>/<month>/<quote-id>.pdf.
type Archive struct {
	client        objectAPI
	bucket        string
	presignExpiry time.Duration
	logger        logging.Logger
}

// NewArchive connects to object storage and ensures the bucket exists.
func NewArchive(cfg config.MinIOConfig, log logging.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create object storage client")
	}

	a := &Archive{
		client:        client,
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
		logger:        log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("object storage connected",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.Bucket),
	)
	return a, nil
}

// newArchiveWithClient is used by tests.
func newArchiveWithClient(client objectAPI, bucket string, presignExpiry time.Duration, log logging.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, presignExpiry: presignExpiry, logger: log}
}

func (a *Archive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check bucket")
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to create bucket")
	}
	return nil
}

// ObjectName returns the archive path for a quote exported at the given time.
func ObjectName(quoteID string, at time.Time) string {
	return fmt.Sprintf("quotes/%04d/%02d/%s.pdf", at.Year(), int(at.Month()), quoteID)
}

// StorePDF uploads one rendered quote document and returns its object name.
func (a *Archive) StorePDF(ctx context.Context, quoteID string, pdf []byte, at time.Time) (string, error) {
	name := ObjectName(quoteID, at)
	_, err := a.client.PutObject(ctx, a.bucket, name,
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"},
	)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeQuoteArchiveFailed, "failed to archive quote PDF")
	}

	a.logger.Info("quote PDF archived",
		logging.String("object", name),
		logging.Int("bytes", len(pdf)),
	)
	return name, nil
}

// PresignedURL returns a time-limited download link for an archived PDF.
func (a *Archive) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, a.presignExpiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeQuoteArchiveFailed, "failed to presign download URL")
	}
	return u.String(), nil
}
