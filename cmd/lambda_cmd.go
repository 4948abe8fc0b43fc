package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/kebairia/rdsbackup/internal/operations"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve the scheduled backup as a Lambda function",
	Run: func(cmd *cobra.Command, args []string) {
		h := &operations.Handler{ConfigPath: ConfigFile, Log: log}
		lambda.Start(h.Handle)
	},
}
