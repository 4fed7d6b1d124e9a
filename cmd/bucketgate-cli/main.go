package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	username   string
	password   string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "bucketgate-cli",
	Version:       version,
	Short:         "Client for the bucketgate file gateway",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `bucketgate-cli uploads, downloads and deletes files through a
bucketgate server.

Connection settings are resolved from, in increasing priority:
  - the selected profile (--profile, BUCKETGATE_PROFILE, or the default)
  - BUCKETGATE_ENDPOINT, BUCKETGATE_USERNAME, BUCKETGATE_PASSWORD
  - the --endpoint, --username and --password flags`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.bucketgate/config.yaml, env: BUCKETGATE_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: BUCKETGATE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username (env: BUCKETGATE_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password (env: BUCKETGATE_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if !errors.As(err, &exit) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the profile file location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	name := profile
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	file, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		p, profileErr := file.Lookup(name)
		switch {
		case profileErr == nil:
			configs = append(configs, p.Config())
		case name != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles):
			return nil, profileErr
		}
	case errors.Is(err, os.ErrNotExist) && cfgFile == "" && name == "":
		// no profiles yet; env and flags may still be enough
	default:
		return nil, err
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, Username: username, Password: password},
	)

	cfg := clientcli.MergeConfig(configs...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (use --username/--password or 'bucketgate-cli configure')", err)
	}
	return cfg, nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}

// handleError prints err with the active formatter and marks the command failed.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want an error message printed again.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
