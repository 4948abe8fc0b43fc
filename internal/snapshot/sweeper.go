package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/dustin/go-humanize"

	"github.com/kebairia/rdsbackup/internal/logger"
)

// SweeperOption lets you override default settings on a Sweeper.
type SweeperOption func(*Sweeper)

// Sweeper deletes this job's snapshots once they fall out of the retention window.
// It keeps no state between runs; every sweep works from the live listing.
type Sweeper struct {
	api           API
	retentionDays int
	snapshotType  string
	naming        NamingPolicy
	log           logger.Logger
}

// NewSweeper returns a Sweeper with a 30 day window over manual snapshots.
func NewSweeper(api API, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		api:           api,
		retentionDays: 30,
		snapshotType:  "manual",
		naming:        AutomatedNaming{},
		log:           logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithRetentionDays overrides the retention window.
func WithRetentionDays(days int) SweeperOption {
	return func(s *Sweeper) {
		if days >= 0 {
			s.retentionDays = days
		}
	}
}

// WithSnapshotType sets the SnapshotType listing filter. An empty type lists
// every snapshot of the instance.
func WithSnapshotType(snapshotType string) SweeperOption {
	return func(s *Sweeper) {
		s.snapshotType = snapshotType
	}
}

// WithNamingPolicy replaces the policy that recognises this job's snapshots.
func WithNamingPolicy(p NamingPolicy) SweeperOption {
	return func(s *Sweeper) {
		if p != nil {
			s.naming = p
		}
	}
}

// WithSweeperLogger sets the logger.
func WithSweeperLogger(log logger.Logger) SweeperOption {
	return func(s *Sweeper) {
		if log != nil {
			s.log = log
		}
	}
}

// RetentionDays returns the configured window.
func (s *Sweeper) RetentionDays() int { return s.retentionDays }

// Cutoff is the instant before which snapshots are expired.
func (s *Sweeper) Cutoff(now time.Time) time.Time {
	return now.Add(-time.Duration(s.retentionDays) * 24 * time.Hour)
}

// Candidates filters snapshots down to the ones a sweep at now would delete.
func (s *Sweeper) Candidates(snapshots []Snapshot, instanceID string, now time.Time) []Snapshot {
	cutoff := s.Cutoff(now)
	var out []Snapshot
	for _, snap := range snapshots {
		if !s.naming.Matches(instanceID, snap.ID) {
			continue
		}
		if snap.CreatedAt == nil || !snap.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, snap)
	}
	return out
}

// List returns every snapshot of instanceID matching the type filter.
func (s *Sweeper) List(ctx context.Context, instanceID string) ([]Snapshot, error) {
	in := &rds.DescribeDBSnapshotsInput{
		DBInstanceIdentifier: aws.String(instanceID),
	}
	if s.snapshotType != "" {
		in.SnapshotType = aws.String(s.snapshotType)
	}

	var snapshots []Snapshot
	paginator := rds.NewDescribeDBSnapshotsPaginator(s.api, in)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: instance %q: %w", ErrListFailed, instanceID, err)
		}
		for i := range page.DBSnapshots {
			snapshots = append(snapshots, fromRDS(&page.DBSnapshots[i]))
		}
	}
	return snapshots, nil
}

// Plan lists the instance's snapshots and returns the expired ones.
func (s *Sweeper) Plan(ctx context.Context, instanceID string, now time.Time) ([]Snapshot, error) {
	snapshots, err := s.List(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return s.Candidates(snapshots, instanceID, now), nil
}

// Sweep deletes every expired snapshot of instanceID and returns how many
// were deleted. A failed deletion does not stop the sweep; all failures are
// joined into the returned error.
func (s *Sweeper) Sweep(ctx context.Context, instanceID string, now time.Time) (int, error) {
	expired, err := s.Plan(ctx, instanceID, now)
	if err != nil {
		return 0, err
	}

	deleted := 0
	var errs []error
	for _, snap := range expired {
		s.log.Info("deleting expired snapshot",
			"snapshot_id", snap.ID,
			"created", humanize.RelTime(*snap.CreatedAt, now, "ago", "from now"),
		)
		_, err := s.api.DeleteDBSnapshot(ctx, &rds.DeleteDBSnapshotInput{
			DBSnapshotIdentifier: aws.String(snap.ID),
		})
		if err != nil {
			s.log.Warn("snapshot deletion failed",
				"snapshot_id", snap.ID,
				"code", errorCode(err),
				"error", err.Error(),
			)
			errs = append(errs, fmt.Errorf("%w: %q: %w", ErrDeleteFailed, snap.ID, err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info("cleaned up expired snapshots", "count", deleted, "retention_days", s.retentionDays)
	} else {
		s.log.Info("no expired snapshots to clean up", "retention_days", s.retentionDays)
	}
	return deleted, errors.Join(errs...)
}
