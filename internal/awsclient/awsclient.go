// Package awsclient builds the RDS and S3 clients for a single invocation.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/kebairia/rdsbackup/internal/config"
	"github.com/kebairia/rdsbackup/internal/vault"
)

// Clients are the two service handles one run needs.
type Clients struct {
	RDS *rds.Client
	S3  *s3.Client
}

// New resolves AWS configuration from the ambient chain, or from Vault when
// cfg.Vault is enabled, and returns fresh clients.
func New(ctx context.Context, cfg config.Config) (Clients, error) {
	awsCfg, err := Load(ctx, cfg)
	if err != nil {
		return Clients{}, err
	}

	rdsClient := rds.NewFromConfig(awsCfg, func(o *rds.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			// S3-compatible endpoints generally need path-style addressing.
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})

	return Clients{RDS: rdsClient, S3: s3Client}, nil
}

// Load returns the aws.Config used by New.
func Load(ctx context.Context, cfg config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}

	if cfg.Vault.Enabled() {
		vc, err := vault.NewClient(ctx,
			vault.WithAddress(cfg.Vault.Address),
			vault.WithToken(cfg.Vault.Token),
			vault.WithAppRole(cfg.Vault.RoleID, cfg.Vault.RoleName),
		)
		if err != nil {
			return aws.Config{}, fmt.Errorf("vault client init: %w", err)
		}
		provider := vault.NewCredentialsProvider(vc, cfg.Vault.AWSRole)
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.NewCredentialsCache(provider)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("AWS SDK config initialization error: %w", err)
	}
	return awsCfg, nil
}
