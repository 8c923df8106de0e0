package publisher

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// R2Store talks to a Cloudflare R2 bucket through the S3-compatible
// API. Requests are paced by a client-side limiter so a large batch
// does not hammer the endpoint.
type R2Store struct {
	client  *minio.Client
	bucket  string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// R2Options carries the credentials and pacing for one store.
type R2Options struct {
	AccountID string
	AccessKey string
	SecretKey string
	Bucket    string
	// RequestsPerSecond of zero disables pacing.
	RequestsPerSecond float64
}

// NewR2Store builds the client and probes the bucket. A probe failure
// (bad credentials, wrong account, missing bucket) is batch-fatal and
// must abort before any file is processed.
func NewR2Store(ctx context.Context, opts R2Options, logger *zap.Logger) (*R2Store, error) {
	endpoint := fmt.Sprintf("%s.r2.cloudflarestorage.com", opts.AccountID)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: true,
		Region: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("create R2 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("probe bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %q does not exist", opts.Bucket)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	logger.Info("Connected to R2 bucket",
		zap.String("endpoint", endpoint),
		zap.String("bucket", opts.Bucket))

	return &R2Store{
		client:  client,
		bucket:  opts.Bucket,
		limiter: limiter,
		logger:  logger,
	}, nil
}

func (s *R2Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
