package snapshot

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/kebairia/rdsbackup/internal/logger"
)

// RestorerOption lets you override default settings on a Restorer.
type RestorerOption func(*Restorer)

// Restorer provisions new instances from snapshots. New instances are
// private and single-AZ.
type Restorer struct {
	api           API
	instanceClass string
	storageType   string
	environment   string
	createdBy     string
	log           logger.Logger
}

// NewRestorer returns a Restorer provisioning db.t3.micro/gp2 instances.
func NewRestorer(api API, opts ...RestorerOption) *Restorer {
	r := &Restorer{
		api:           api,
		instanceClass: "db.t3.micro",
		storageType:   "gp2",
		environment:   "production",
		createdBy:     "lambda-restore-function",
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithInstanceClass overrides the DB instance class.
func WithInstanceClass(class string) RestorerOption {
	return func(r *Restorer) {
		if class != "" {
			r.instanceClass = class
		}
	}
}

// WithStorageType overrides the storage type.
func WithStorageType(storageType string) RestorerOption {
	return func(r *Restorer) {
		if storageType != "" {
			r.storageType = storageType
		}
	}
}

// WithRestoreTags overrides the Environment and CreatedBy tags.
func WithRestoreTags(environment, createdBy string) RestorerOption {
	return func(r *Restorer) {
		if environment != "" {
			r.environment = environment
		}
		if createdBy != "" {
			r.createdBy = createdBy
		}
	}
}

// WithRestorerLogger sets the logger.
func WithRestorerLogger(log logger.Logger) RestorerOption {
	return func(r *Restorer) {
		if log != nil {
			r.log = log
		}
	}
}

// Restore asks RDS to create newInstanceID from snapshotID and returns the
// instance as first reported. Provisioning continues asynchronously.
// Errors are returned to the caller as-is apart from wrapping.
func (r *Restorer) Restore(ctx context.Context, snapshotID, newInstanceID string) (*rdstypes.DBInstance, error) {
	r.log.Info("restore started",
		"snapshot_id", snapshotID,
		"instance_id", newInstanceID,
		"instance_class", r.instanceClass,
	)

	out, err := r.api.RestoreDBInstanceFromDBSnapshot(ctx, &rds.RestoreDBInstanceFromDBSnapshotInput{
		DBInstanceIdentifier: aws.String(newInstanceID),
		DBSnapshotIdentifier: aws.String(snapshotID),
		DBInstanceClass:      aws.String(r.instanceClass),
		StorageType:          aws.String(r.storageType),
		PubliclyAccessible:   aws.Bool(false),
		MultiAZ:              aws.Bool(false),
		Tags: tags(
			TagName, newInstanceID,
			TagEnvironment, r.environment,
			TagRestoredFrom, snapshotID,
			TagCreatedBy, r.createdBy,
		),
	})
	if err != nil {
		r.log.Error("restore failed",
			"snapshot_id", snapshotID,
			"instance_id", newInstanceID,
			"code", errorCode(err),
			"error", err.Error(),
		)
		return nil, fmt.Errorf("%w: %q from %q: %w", ErrRestoreFailed, newInstanceID, snapshotID, err)
	}

	r.log.Info("restore initiated", "instance_id", newInstanceID)
	return out.DBInstance, nil
}
