// Package metadata publishes one JSON record per backup run to S3.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/kebairia/rdsbackup/internal/logger"
)

const (
	Filename    = "metadata.json"
	ContentType = "application/json"
	keyPrefix   = "backups"
)

// ErrPublishFailed wraps any failure to write a record.
var ErrPublishFailed = errors.New("metadata publish failed")

// BackupRecord describes a single backup run. Records are written once and
// never updated or deleted.
type BackupRecord struct {
	Timestamp     string `json:"timestamp"`
	SnapshotID    string `json:"snapshot_id"`
	InstanceID    string `json:"instance_id"`
	BackupType    string `json:"backup_type"`
	RetentionDays int    `json:"retention_days"`
	CreatedBy     string `json:"created_by"`
}

// Key returns the object key of the record for a run at timestamp.
func Key(timestamp string) string {
	return keyPrefix + "/" + timestamp + "/" + Filename
}

// Location renders an s3:// URL.
func Location(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}

// PutObjectAPI is the subset of the S3 client the Publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ PutObjectAPI = (*s3.Client)(nil)

// Publisher writes records to a bucket with SSE-KMS.
type Publisher struct {
	api      PutObjectAPI
	bucket   string
	kmsKeyID string
	log      logger.Logger
}

// NewPublisher returns a Publisher writing to bucket, encrypting with kmsKeyID.
func NewPublisher(api PutObjectAPI, bucket, kmsKeyID string, log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{api: api, bucket: bucket, kmsKeyID: kmsKeyID, log: log}
}

// Publish writes rec under Key(rec.Timestamp) and returns its s3:// location.
func (p *Publisher) Publish(ctx context.Context, rec BackupRecord) (string, error) {
	body, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode record: %w", ErrPublishFailed, err)
	}

	key := Key(rec.Timestamp)
	start := time.Now()
	_, err = p.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(p.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String(ContentType),
		ServerSideEncryption: s3types.ServerSideEncryptionAwsKms,
		SSEKMSKeyId:          aws.String(p.kmsKeyID),
	})
	if err != nil {
		p.log.Error("metadata upload failed",
			"bucket", p.bucket,
			"key", key,
			"error", err.Error(),
		)
		return "", fmt.Errorf("%w: put %s: %w", ErrPublishFailed, Location(p.bucket, key), err)
	}

	location := Location(p.bucket, key)
	p.log.Info("metadata uploaded",
		"location", location,
		"size_bytes", len(body),
		"duration", time.Since(start).String(),
	)
	return location, nil
}
