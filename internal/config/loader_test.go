package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_EnvironmentOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_BUCKET", "backup-bucket")
	t.Setenv("KMS_KEY_ID", "alias/backups")
	t.Setenv("RDS_INSTANCE_ID", "prod-db-1")

	cfg, err := LoadAndValidate("")
	require.NoError(t, err)

	assert.Equal(t, "backup-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "alias/backups", cfg.Storage.KMSKeyID)
	assert.Equal(t, "prod-db-1", cfg.Backup.InstanceID)
	assert.Equal(t, DefaultRetentionDays, cfg.Backup.RetentionDays)
	assert.Equal(t, DefaultSnapshotType, cfg.Backup.SnapshotType)
	assert.Equal(t, DefaultEnvironment, cfg.Backup.Environment)
	assert.Equal(t, DefaultBackupCreator, cfg.Backup.CreatedBy)
	assert.Equal(t, DefaultInstanceClass, cfg.Restore.InstanceClass)
	assert.Equal(t, DefaultStorageType, cfg.Restore.StorageType)
	assert.Equal(t, DefaultRestoreCreator, cfg.Restore.CreatedBy)
	assert.False(t, cfg.Vault.Enabled())
}

func TestLoad_MissingRequiredIsValidationError(t *testing.T) {
	clearEnv(t)
	t.Setenv("S3_BUCKET", "backup-bucket")

	_, err := LoadAndValidate("")
	require.ErrorIs(t, err, ErrValidateConfig)
	assert.Contains(t, err.Error(), "KMS_KEY_ID")
	assert.Contains(t, err.Error(), "RDS_INSTANCE_ID")
	assert.NotContains(t, err.Error(), "S3_BUCKET")
}

func TestLoad_FileWithIncludeAndEnvOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	inc := writeFile(t, dir, "restore.yaml", `
restore:
  instance_class: "db.r6g.large"
`)
	base := writeFile(t, dir, "config.yaml", `
include:
  - "`+inc+`"
backup:
  instance_id: "file-db"
  retention_days: 7
storage:
  bucket: "file-bucket"
  kms_key_id: "file-key"
vault:
  address: "http://127.0.0.1:8200"
  aws_role: "aws/creds/backup"
`)
	t.Setenv("RDS_INSTANCE_ID", "env-db")
	t.Setenv("RETENTION_DAYS", "14")

	cfg, err := LoadAndValidate(base)
	require.NoError(t, err)

	assert.Equal(t, "env-db", cfg.Backup.InstanceID)
	assert.Equal(t, 14, cfg.Backup.RetentionDays)
	assert.Equal(t, "file-bucket", cfg.Storage.Bucket)
	assert.Equal(t, "db.r6g.large", cfg.Restore.InstanceClass)
	assert.Equal(t, DefaultStorageType, cfg.Restore.StorageType)
	assert.True(t, cfg.Vault.Enabled())
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `
backup:
  instance_id: "db"
  keep_last: 3
`)
	var cfg Config
	err := cfg.Load(path)
	require.ErrorIs(t, err, ErrLoadConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	var cfg Config
	err := cfg.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrLoadConfig)
}

func TestValidate_NegativeRetention(t *testing.T) {
	cfg := Config{
		Backup:  BackupConfig{InstanceID: "db", RetentionDays: -1},
		Storage: StorageConfig{Bucket: "b", KMSKeyID: "k"},
	}
	require.ErrorIs(t, cfg.Validate(), ErrValidateConfig)
}
