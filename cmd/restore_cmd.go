package cmd

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Create a new instance from a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshotID, _ := cmd.Flags().GetString("snapshot")
		instanceID, _ := cmd.Flags().GetString("instance")
		if snapshotID == "" || instanceID == "" {
			return errors.New("--snapshot and --instance are required")
		}

		op, err := newOperator(cmd.Context())
		if err != nil {
			return err
		}
		inst, err := op.Restore(cmd.Context(), snapshotID, instanceID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restoring %s (status %s)\n",
			aws.ToString(inst.DBInstanceIdentifier),
			aws.ToString(inst.DBInstanceStatus),
		)
		return nil
	},
}

func init() {
	restoreCmd.Flags().
		StringP("snapshot", "s", "", "snapshot identifier to restore from")
	restoreCmd.Flags().
		StringP("instance", "i", "", "identifier of the new instance")
}
