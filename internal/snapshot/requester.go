package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/smithy-go"

	"github.com/kebairia/rdsbackup/internal/logger"
)

// RequesterOption lets you override default settings on a Requester.
type RequesterOption func(*Requester)

// Requester asks RDS for new snapshots. It does not wait for them to finish.
type Requester struct {
	api         API
	environment string
	createdBy   string
	log         logger.Logger
}

// NewRequester returns a Requester using api plus any overrides.
func NewRequester(api API, opts ...RequesterOption) *Requester {
	r := &Requester{
		api:         api,
		environment: "production",
		createdBy:   "lambda-backup-function",
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithEnvironment overrides the Environment tag.
func WithEnvironment(env string) RequesterOption {
	return func(r *Requester) {
		if env != "" {
			r.environment = env
		}
	}
}

// WithCreatedBy overrides the CreatedBy tag.
func WithCreatedBy(createdBy string) RequesterOption {
	return func(r *Requester) {
		if createdBy != "" {
			r.createdBy = createdBy
		}
	}
}

// WithRequesterLogger sets the logger.
func WithRequesterLogger(log logger.Logger) RequesterOption {
	return func(r *Requester) {
		if log != nil {
			r.log = log
		}
	}
}

// Request creates snapshotID from instanceID and returns the provider's
// acknowledgement, normally in the "creating" state.
func (r *Requester) Request(ctx context.Context, instanceID, snapshotID string) (*Snapshot, error) {
	r.log.Info("snapshot requested",
		"instance_id", instanceID,
		"snapshot_id", snapshotID,
	)

	start := time.Now()
	out, err := r.api.CreateDBSnapshot(ctx, &rds.CreateDBSnapshotInput{
		DBInstanceIdentifier: aws.String(instanceID),
		DBSnapshotIdentifier: aws.String(snapshotID),
		Tags: tags(
			TagName, snapshotID,
			TagEnvironment, r.environment,
			TagBackupType, BackupTypeAutomated,
			TagCreatedBy, r.createdBy,
		),
	})
	if err != nil {
		r.log.Error("snapshot request failed",
			"instance_id", instanceID,
			"snapshot_id", snapshotID,
			"code", errorCode(err),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: create %q: %w", ErrSnapshotFailed, snapshotID, err)
	}

	snap := fromRDS(out.DBSnapshot)
	if snap.ID == "" {
		snap.ID = snapshotID
		snap.InstanceID = instanceID
	}
	r.log.Info("snapshot accepted",
		"snapshot_id", snap.ID,
		"status", snap.Status,
		"duration", time.Since(start).String(),
	)
	return &snap, nil
}

// errorCode extracts the provider error code, e.g. "DBInstanceNotFound".
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return "unknown"
}
