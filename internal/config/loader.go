package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the configuration.
var ErrLoadConfig = errors.New("config load failed")

// ErrValidateConfig indicates that the loaded configuration is invalid.
var ErrValidateConfig = errors.New("configuration validation failed")

const (
	DefaultRetentionDays  = 30
	DefaultSnapshotType   = "manual"
	DefaultEnvironment    = "production"
	DefaultBackupCreator  = "lambda-backup-function"
	DefaultRestoreCreator = "lambda-restore-function"
	DefaultInstanceClass  = "db.t3.micro"
	DefaultStorageType    = "gp2"
	DefaultMetricsJob     = "rds_backup"
	DefaultLogLevel       = "info"
)

// Config represents the full job configuration.
type Config struct {
	Include []string      `mapstructure:"include" yaml:"include,omitempty"`
	Backup  BackupConfig  `mapstructure:"backup"  yaml:"backup"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	AWS     AWSConfig     `mapstructure:"aws"     yaml:"aws"`
	Restore RestoreConfig `mapstructure:"restore" yaml:"restore"`
	Vault   VaultConfig   `mapstructure:"vault"   yaml:"vault"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Log     LogConfig     `mapstructure:"log"     yaml:"log"`
}

// BackupConfig describes the instance being snapshotted and the retention policy.
type BackupConfig struct {
	InstanceID    string `mapstructure:"instance_id"    yaml:"instance_id"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
	Environment   string `mapstructure:"environment"    yaml:"environment"`
	CreatedBy     string `mapstructure:"created_by"     yaml:"created_by"`
	// SnapshotType filters the listing the sweeper works from. Empty lists every type.
	SnapshotType string `mapstructure:"snapshot_type" yaml:"snapshot_type"`
}

// StorageConfig holds the metadata bucket and its encryption key.
type StorageConfig struct {
	Bucket   string `mapstructure:"bucket"     yaml:"bucket"`
	KMSKeyID string `mapstructure:"kms_key_id" yaml:"kms_key_id"`
}

// AWSConfig overrides the ambient SDK settings.
type AWSConfig struct {
	Region   string `mapstructure:"region"   yaml:"region,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
}

// RestoreConfig is the fixed shape of instances created from a snapshot.
type RestoreConfig struct {
	InstanceClass string `mapstructure:"instance_class" yaml:"instance_class"`
	StorageType   string `mapstructure:"storage_type"   yaml:"storage_type"`
	CreatedBy     string `mapstructure:"created_by"     yaml:"created_by"`
}

// VaultConfig enables AWS credentials issued by Vault's AWS secrets engine.
type VaultConfig struct {
	Address  string `mapstructure:"address"   yaml:"address,omitempty"`
	Token    string `mapstructure:"token"     yaml:"token,omitempty"`
	RoleID   string `mapstructure:"role_id"   yaml:"role_id,omitempty"`
	RoleName string `mapstructure:"role_name" yaml:"role_name,omitempty"`
	// AWSRole is the secrets engine path, e.g. "aws/creds/backup".
	AWSRole string `mapstructure:"aws_role" yaml:"aws_role,omitempty"`
}

// Enabled reports whether credentials should be read from Vault.
func (v VaultConfig) Enabled() bool {
	return v.Address != "" && v.AWSRole != ""
}

// MetricsConfig controls the optional Pushgateway export.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url" yaml:"pushgateway_url,omitempty"`
	Job            string `mapstructure:"job"             yaml:"job"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Level       string `mapstructure:"level"       yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"backup.instance_id":      "RDS_INSTANCE_ID",
	"backup.retention_days":   "RETENTION_DAYS",
	"backup.environment":      "ENVIRONMENT",
	"backup.snapshot_type":    "SNAPSHOT_TYPE",
	"storage.bucket":          "S3_BUCKET",
	"storage.kms_key_id":      "KMS_KEY_ID",
	"aws.region":              "AWS_REGION",
	"aws.endpoint":            "AWS_ENDPOINT_URL",
	"vault.address":           "VAULT_ADDR",
	"vault.token":             "VAULT_TOKEN",
	"vault.role_id":           "VAULT_ROLE_ID",
	"vault.role_name":         "VAULT_ROLE_NAME",
	"vault.aws_role":          "VAULT_AWS_ROLE",
	"metrics.pushgateway_url": "PUSHGATEWAY_URL",
	"log.level":               "LOG_LEVEL",
	"log.development":         "LOG_DEVELOPMENT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backup.retention_days", DefaultRetentionDays)
	v.SetDefault("backup.environment", DefaultEnvironment)
	v.SetDefault("backup.created_by", DefaultBackupCreator)
	v.SetDefault("backup.snapshot_type", DefaultSnapshotType)
	v.SetDefault("restore.instance_class", DefaultInstanceClass)
	v.SetDefault("restore.storage_type", DefaultStorageType)
	v.SetDefault("restore.created_by", DefaultRestoreCreator)
	v.SetDefault("metrics.job", DefaultMetricsJob)
	v.SetDefault("log.level", DefaultLogLevel)
}

// Load reads the optional YAML file at path, merges any included files,
// applies environment overrides and unmarshals into the Config struct.
// An empty path means environment only.
func (c *Config) Load(path string) error {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("%w: bind %s: %v", ErrLoadConfig, env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		// Read base configuration
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read base config %s: %v", ErrLoadConfig, path, err)
		}

		// Merge include files (if any)
		for _, inc := range v.GetStringSlice("include") {
			data, err := os.ReadFile(inc)
			if err != nil {
				return fmt.Errorf("%w: read include %s: %v", ErrLoadConfig, inc, err)
			}
			if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
				return fmt.Errorf("%w: merge include %s: %v", ErrLoadConfig, inc, err)
			}
		}
	}

	if err := v.UnmarshalExact(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}

	return nil
}

// Validate checks that every required setting is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Storage.Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.Storage.KMSKeyID == "" {
		missing = append(missing, "KMS_KEY_ID")
	}
	if c.Backup.InstanceID == "" {
		missing = append(missing, "RDS_INSTANCE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidateConfig, strings.Join(missing, ", "))
	}
	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("%w: retention_days must not be negative, got %d",
			ErrValidateConfig, c.Backup.RetentionDays)
	}
	return nil
}

// LoadAndValidate is Load followed by Validate.
func LoadAndValidate(path string) (Config, error) {
	var cfg Config
	if err := cfg.Load(path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
