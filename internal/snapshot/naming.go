package snapshot

import (
	"strings"
	"time"
)

// TimestampLayout renders as YYYY-MM-DD-HH-MM-SS.
const TimestampLayout = "2006-01-02-15-04-05"

const backupInfix = "-backup-"

// Timestamp formats t in its own location.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Identifier returns the snapshot name for instanceID taken at t:
// "<instanceID>-backup-<timestamp>". instanceID is not validated.
func Identifier(instanceID string, t time.Time) string {
	return instanceID + backupInfix + Timestamp(t)
}

// NamingPolicy decides whether a snapshot was created by this job.
type NamingPolicy interface {
	Matches(instanceID, snapshotID string) bool
}

// AutomatedNaming matches identifiers built by Identifier for the same
// instance: the "<instanceID>-backup-" prefix followed by a well-formed
// timestamp and nothing else.
type AutomatedNaming struct{}

func (AutomatedNaming) Matches(instanceID, snapshotID string) bool {
	rest, ok := strings.CutPrefix(snapshotID, instanceID+backupInfix)
	if !ok {
		return false
	}
	_, err := time.Parse(TimestampLayout, rest)
	return err == nil
}
