package operations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/juju/clock"

	"github.com/kebairia/rdsbackup/internal/awsclient"
	"github.com/kebairia/rdsbackup/internal/config"
	"github.com/kebairia/rdsbackup/internal/logger"
	"github.com/kebairia/rdsbackup/internal/metadata"
	"github.com/kebairia/rdsbackup/internal/snapshot"
)

// ClientFactory builds the service clients for one invocation.
type ClientFactory func(ctx context.Context, cfg config.Config) (snapshot.API, metadata.PutObjectAPI, error)

// AWSClients is the ClientFactory used outside tests.
func AWSClients(ctx context.Context, cfg config.Config) (snapshot.API, metadata.PutObjectAPI, error) {
	clients, err := awsclient.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return clients.RDS, clients.S3, nil
}

// Handler is the scheduled entry point. Configuration is read and clients
// are built on every invocation.
type Handler struct {
	// ConfigPath is an optional YAML file; the environment always applies.
	ConfigPath string
	NewClients ClientFactory
	Clock      clock.Clock
	Log        logger.Logger
}

// Handle runs one backup. The event payload is ignored.
//
// Configuration and client errors are returned as errors and never as a
// Response, so the runtime reports them as a failed invocation. Every other
// failure becomes a 500 Response with a nil error.
func (h *Handler) Handle(ctx context.Context, _ json.RawMessage) (Response, error) {
	log := h.Log
	if log == nil {
		log = logger.Nop()
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With("request_id", lc.AwsRequestID)
	}

	cfg, err := config.LoadAndValidate(h.ConfigPath)
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		return Response{}, err
	}

	newClients := h.NewClients
	if newClients == nil {
		newClients = AWSClients
	}
	rdsAPI, s3API, err := newClients(ctx, cfg)
	if err != nil {
		log.Error("client initialization failed", "error", err.Error())
		return Response{}, fmt.Errorf("build clients: %w", err)
	}

	op := NewOperator(cfg, rdsAPI, s3API,
		WithClock(h.Clock),
		WithLogger(log.With("instance_id", cfg.Backup.InstanceID)),
	)
	result := op.Backup(ctx)

	if url := cfg.Metrics.PushgatewayURL; url != "" {
		if err := op.Metrics().Push(ctx, url, cfg.Metrics.Job); err != nil {
			log.Warn("metrics push failed", "error", err.Error())
		}
	}

	return result.Response(), nil
}
