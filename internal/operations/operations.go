package operations

import (
	"github.com/juju/clock"

	"github.com/kebairia/rdsbackup/internal/config"
	"github.com/kebairia/rdsbackup/internal/logger"
	"github.com/kebairia/rdsbackup/internal/metadata"
	"github.com/kebairia/rdsbackup/internal/metrics"
	"github.com/kebairia/rdsbackup/internal/snapshot"
)

// Operator runs the backup flow and the restore entry point for one
// configured instance. Build one per invocation.
type Operator struct {
	cfg       config.Config
	requester *snapshot.Requester
	publisher *metadata.Publisher
	sweeper   *snapshot.Sweeper
	restorer  *snapshot.Restorer
	naming    snapshot.NamingPolicy
	clock     clock.Clock
	metrics   *metrics.Recorder
	log       logger.Logger
}

// Option lets you override default settings on an Operator.
type Option func(*Operator)

// WithClock overrides the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *Operator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger shared by every step.
func WithLogger(log logger.Logger) Option {
	return func(o *Operator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithMetrics sets the run's metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *Operator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithNamingPolicy replaces the policy the sweeper uses to recognise its snapshots.
func WithNamingPolicy(p snapshot.NamingPolicy) Option {
	return func(o *Operator) {
		o.naming = p
	}
}

// NewOperator wires the steps against the given service clients.
func NewOperator(
	cfg config.Config,
	rdsAPI snapshot.API,
	s3API metadata.PutObjectAPI,
	opts ...Option,
) *Operator {
	o := &Operator{
		cfg:     cfg,
		clock:   clock.WallClock,
		log:     logger.Nop(),
		metrics: metrics.NewRecorder(cfg.Backup.InstanceID),
	}
	for _, opt := range opts {
		opt(o)
	}

	o.requester = snapshot.NewRequester(rdsAPI,
		snapshot.WithEnvironment(cfg.Backup.Environment),
		snapshot.WithCreatedBy(cfg.Backup.CreatedBy),
		snapshot.WithRequesterLogger(o.log),
	)
	o.publisher = metadata.NewPublisher(s3API, cfg.Storage.Bucket, cfg.Storage.KMSKeyID, o.log)
	o.sweeper = snapshot.NewSweeper(rdsAPI,
		snapshot.WithRetentionDays(cfg.Backup.RetentionDays),
		snapshot.WithSnapshotType(cfg.Backup.SnapshotType),
		snapshot.WithNamingPolicy(o.naming),
		snapshot.WithSweeperLogger(o.log),
	)
	o.restorer = snapshot.NewRestorer(rdsAPI,
		snapshot.WithInstanceClass(cfg.Restore.InstanceClass),
		snapshot.WithStorageType(cfg.Restore.StorageType),
		snapshot.WithRestoreTags(cfg.Backup.Environment, cfg.Restore.CreatedBy),
		snapshot.WithRestorerLogger(o.log),
	)
	return o
}

// Metrics returns the recorder the Operator reports to.
func (o *Operator) Metrics() *metrics.Recorder { return o.metrics }

// Sweeper exposes the retention sweeper, for standalone sweeps.
func (o *Operator) Sweeper() *snapshot.Sweeper { return o.sweeper }
