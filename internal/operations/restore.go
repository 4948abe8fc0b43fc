package operations

import (
	"context"

	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// Restore requests a new instance newInstanceID built from snapshotID.
// Unlike Backup it does not produce a Response: provider errors are returned
// to the caller, who decides how to report them.
func (o *Operator) Restore(ctx context.Context, snapshotID, newInstanceID string) (*rdstypes.DBInstance, error) {
	return o.restorer.Restore(ctx, snapshotID, newInstanceID)
}
