package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bucketgate",
	Short:   "Per-user file gateway in front of an S3 bucket",
	Long: `bucketgate is a small HTTP service that lets authenticated users
upload files into their own area of an S3 bucket, fetch them back through
short-lived presigned URLs, and delete them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Log)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("users-file", "", "CSV or JSON credentials file (env: BUCKETGATE_AUTH_FILE)")
	rootCmd.PersistentFlags().String("db-type", "", "user database type: sqlite, postgres (env: BUCKETGATE_AUTH_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "user database connection string (default: bucketgate.db)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text, json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
