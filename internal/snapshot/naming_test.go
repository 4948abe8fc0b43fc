package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentifier(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-15-10-30-00", Timestamp(at))
	assert.Equal(t, "prod-db-1-backup-2024-01-15-10-30-00", Identifier("prod-db-1", at))
	// No validation of the instance identifier.
	assert.Equal(t, "-backup-2024-01-15-10-30-00", Identifier("", at))
}

func TestIdentifier_UsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC).In(loc)

	assert.Equal(t, "prod-db-1-backup-2024-01-15-12-30-00", Identifier("prod-db-1", at))
}

func TestAutomatedNaming(t *testing.T) {
	policy := AutomatedNaming{}
	at := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		instanceID string
		snapshotID string
		want       bool
	}{
		{"built identifier", "prod-db-1", Identifier("prod-db-1", at), true},
		{"trailing infix only", "prod-db-1", "prod-db-1-backup-", false},
		{"other instance", "prod-db-1", Identifier("prod-db-2", at), false},
		{"instance prefix of another", "prod-db", Identifier("prod-db-1", at), false},
		{"manual snapshot", "prod-db-1", "prod-db-1-before-migration", false},
		{"malformed timestamp", "prod-db-1", "prod-db-1-backup-yesterday", false},
		{"extra suffix", "prod-db-1", Identifier("prod-db-1", at) + "-copy", false},
		{"provider automated", "prod-db-1", "rds:prod-db-1-2023-12-01-00-00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Matches(tt.instanceID, tt.snapshotID))
		})
	}
}
