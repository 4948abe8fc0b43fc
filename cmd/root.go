package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kebairia/rdsbackup/internal/awsclient"
	"github.com/kebairia/rdsbackup/internal/config"
	"github.com/kebairia/rdsbackup/internal/logger"
	"github.com/kebairia/rdsbackup/internal/operations"
)

var (
	// ConfigFile is an optional YAML file layered under the environment.
	ConfigFile string
	// Debug forces a development console logger at debug level.
	Debug bool

	log = logger.Nop()

	// rootCmd is the base command for rdsbackup.
	rootCmd = &cobra.Command{
		Use:   "rdsbackup",
		Short: "Snapshot, sweep and restore an RDS instance",
		Long: `rdsbackup takes a manual snapshot of one RDS instance, records it
in S3 and deletes its own snapshots once they fall out of retention.

Settings come from the environment (S3_BUCKET, KMS_KEY_ID, RDS_INSTANCE_ID, ...)
and may be layered over a YAML file given with --config.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
	}
)

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&ConfigFile, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().
		BoolVar(&Debug, "debug", false, "human readable debug logging")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(lambdaCmd)
}

// setupLogger builds the process logger from LOG_LEVEL / LOG_DEVELOPMENT,
// before the required settings are validated.
func setupLogger(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if err := cfg.Load(ConfigFile); err != nil {
		return err
	}
	opts := logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}
	if Debug {
		opts = logger.Options{Level: "debug", Development: true}
	}
	l, err := logger.New(opts)
	if err != nil {
		return err
	}
	log = l.With("command", cmd.Name())
	return nil
}

// newOperator loads and validates the configuration and wires an Operator
// against real AWS clients.
func newOperator(ctx context.Context) (*operations.Operator, error) {
	cfg, err := config.LoadAndValidate(ConfigFile)
	if err != nil {
		return nil, err
	}
	clients, err := awsclient.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build clients: %w", err)
	}
	op := operations.NewOperator(cfg, clients.RDS, clients.S3,
		operations.WithLogger(log.With("instance_id", cfg.Backup.InstanceID)),
	)
	return op, nil
}
