package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kebairia/rdsbackup/internal/operations"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Run one backup: snapshot, metadata record and retention sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		h := &operations.Handler{ConfigPath: ConfigFile, Log: log}
		resp, err := h.Handle(cmd.Context(), nil)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%s: %s", resp.Body.Message, resp.Body.Error)
		}
		return nil
	},
}
