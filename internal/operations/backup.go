package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/kebairia/rdsbackup/internal/metadata"
	"github.com/kebairia/rdsbackup/internal/snapshot"
)

// ErrBackupFailed matches every *StepError.
var ErrBackupFailed = errors.New("backup failed")

// Step names a stage of the backup flow that can fail the run.
type Step string

const (
	StepSnapshot Step = "snapshot"
	StepMetadata Step = "metadata"
)

// StepError records which step failed the run.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func (e *StepError) Is(target error) bool { return target == ErrBackupFailed }

// Result is the outcome of one backup run.
type Result struct {
	Timestamp        string
	SnapshotID       string
	MetadataLocation string
	// Swept is the number of snapshots the sweeper deleted.
	Swept int
	// SweepErr is logged, never reported. It does not fail the run.
	SweepErr error
	// Err is nil on success.
	Err *StepError
}

// OK reports whether the run succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Backup snapshots the configured instance, publishes the run's metadata
// record and sweeps expired snapshots, in that order. A failed snapshot or
// publish ends the run; the sweep is best-effort.
func (o *Operator) Backup(ctx context.Context) Result {
	start := o.clock.Now()
	instanceID := o.cfg.Backup.InstanceID
	res := Result{
		Timestamp:  snapshot.Timestamp(start),
		SnapshotID: snapshot.Identifier(instanceID, start),
	}
	log := o.log.With("snapshot_id", res.SnapshotID)

	fail := func(step Step, err error) Result {
		res.Err = &StepError{Step: step, Err: err}
		took := o.clock.Now().Sub(start)
		o.metrics.ObserveFailure(string(step), took)
		log.Error("backup failed", "step", string(step), "error", err.Error())
		return res
	}

	if _, err := o.requester.Request(ctx, instanceID, res.SnapshotID); err != nil {
		return fail(StepSnapshot, err)
	}

	record := metadata.BackupRecord{
		Timestamp:     res.Timestamp,
		SnapshotID:    res.SnapshotID,
		InstanceID:    instanceID,
		BackupType:    snapshot.BackupTypeAutomated,
		RetentionDays: o.sweeper.RetentionDays(),
		CreatedBy:     o.cfg.Backup.CreatedBy,
	}
	location, err := o.publisher.Publish(ctx, record)
	if err != nil {
		// The snapshot already exists at this point and is left in place.
		return fail(StepMetadata, err)
	}
	res.MetadataLocation = location

	res.Swept, res.SweepErr = o.sweeper.Sweep(ctx, instanceID, start)
	o.metrics.ObserveSweep(res.Swept, res.SweepErr)
	if res.SweepErr != nil {
		log.Warn("failed to clean up old snapshots",
			"deleted", res.Swept,
			"error", res.SweepErr.Error(),
		)
	}

	finished := o.clock.Now()
	o.metrics.ObserveSuccess(finished, finished.Sub(start))
	log.Info("backup completed",
		"metadata_location", res.MetadataLocation,
		"swept", res.Swept,
		"duration", finished.Sub(start).String(),
	)
	return res
}

// Sweep runs the retention sweep on its own. With dryRun set it only
// returns the snapshots a sweep would delete.
func (o *Operator) Sweep(ctx context.Context, dryRun bool) ([]snapshot.Snapshot, int, error) {
	now := o.clock.Now()
	instanceID := o.cfg.Backup.InstanceID
	if dryRun {
		expired, err := o.sweeper.Plan(ctx, instanceID, now)
		return expired, 0, err
	}
	deleted, err := o.sweeper.Sweep(ctx, instanceID, now)
	o.metrics.ObserveSweep(deleted, err)
	return nil, deleted, err
}
