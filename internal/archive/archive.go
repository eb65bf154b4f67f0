// Package archive uploads JSON snapshots of newly saved news to an
// S3-compatible bucket such as Cloudflare R2.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/utils"
)

// ErrNothingToArchive is returned for an empty snapshot.
var ErrNothingToArchive = errors.New("no records to archive")

// ObjectPutter is the part of the S3 client used by the archiver.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the bucket credentials.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Snapshot is the uploaded document.
type Snapshot struct {
	Tag        string                 `json:"tag"`
	ArchivedAt time.Time              `json:"archived_at"`
	Count      int                    `json:"count"`
	Items      []models.PersistedNews `json:"items"`
}

// Archiver writes snapshots to a bucket.
type Archiver struct {
	client ObjectPutter
	bucket string
	now    func() time.Time
}

// NewR2Client creates an S3 client for an R2 endpoint.
func NewR2Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}), nil
}

// New creates an archiver writing to bucket. A nil clock uses time.Now.
func New(client ObjectPutter, bucket string, clock func() time.Time) *Archiver {
	if clock == nil {
		clock = time.Now
	}
	return &Archiver{client: client, bucket: bucket, now: clock}
}

// Key returns the object key of a snapshot: tag/YYYY/MM/DD/<sha256>.json.
func Key(tag string, at time.Time, body []byte) string {
	return fmt.Sprintf("%s/%s/%s.json", tag, at.UTC().Format("2006/01/02"), utils.Hash(string(body)))
}

// Archive uploads records as one snapshot and returns its key.
func (a *Archiver) Archive(ctx context.Context, tag string, records []models.PersistedNews) (string, error) {
	if len(records) == 0 {
		return "", ErrNothingToArchive
	}

	now := a.now()
	body, err := json.Marshal(Snapshot{Tag: tag, ArchivedAt: now, Count: len(records), Items: records})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := Key(tag, now, body)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}

	logger.Get().Info().
		Str("bucket", a.bucket).
		Str("key", key).
		Int("records", len(records)).
		Msg("Archived news snapshot")
	return key, nil
}
