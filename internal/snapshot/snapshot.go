// Package snapshot creates, prunes and restores RDS instance snapshots.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

var (
	ErrSnapshotFailed = errors.New("snapshot request failed")
	ErrListFailed     = errors.New("snapshot listing failed")
	ErrDeleteFailed   = errors.New("snapshot deletion failed")
	ErrRestoreFailed  = errors.New("restore request failed")
)

const (
	BackupTypeAutomated = "automated"

	TagName         = "Name"
	TagEnvironment  = "Environment"
	TagBackupType   = "BackupType"
	TagCreatedBy    = "CreatedBy"
	TagRestoredFrom = "RestoredFrom"
)

// API is the subset of the RDS client this package drives.
// *rds.Client satisfies it.
type API interface {
	CreateDBSnapshot(ctx context.Context, in *rds.CreateDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.CreateDBSnapshotOutput, error)
	DescribeDBSnapshots(ctx context.Context, in *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error)
	DeleteDBSnapshot(ctx context.Context, in *rds.DeleteDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.DeleteDBSnapshotOutput, error)
	RestoreDBInstanceFromDBSnapshot(ctx context.Context, in *rds.RestoreDBInstanceFromDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.RestoreDBInstanceFromDBSnapshotOutput, error)
}

var _ API = (*rds.Client)(nil)

// Snapshot is the part of an RDS snapshot the backup lifecycle cares about.
type Snapshot struct {
	ID         string
	InstanceID string
	Type       string
	Status     string
	// CreatedAt is nil while the provider is still creating the snapshot.
	CreatedAt *time.Time
}

func fromRDS(s *rdstypes.DBSnapshot) Snapshot {
	if s == nil {
		return Snapshot{}
	}
	return Snapshot{
		ID:         aws.ToString(s.DBSnapshotIdentifier),
		InstanceID: aws.ToString(s.DBInstanceIdentifier),
		Type:       aws.ToString(s.SnapshotType),
		Status:     aws.ToString(s.Status),
		CreatedAt:  s.SnapshotCreateTime,
	}
}

func tags(kv ...string) []rdstypes.Tag {
	out := make([]rdstypes.Tag, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, rdstypes.Tag{Key: aws.String(kv[i]), Value: aws.String(kv[i+1])})
	}
	return out
}
