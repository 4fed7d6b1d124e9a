package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var (
	downloadOutput  string
	downloadStdout  bool
	downloadURLOnly bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-path> [local-path]",
	Short: "Download a file from the server",
	Long: `Download a file from your area of the bucket.

The server answers with a short-lived presigned URL and the object's tags;
the file itself is fetched straight from the bucket.

Examples:
  bucketgate-cli download documents/report.pdf
  bucketgate-cli download documents/report.pdf ./local.pdf
  bucketgate-cli download --stdout config.json | jq .
  bucketgate-cli download --url documents/report.pdf`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
	downloadCmd.Flags().BoolVar(&downloadURLOnly, "url", false, "print the presigned URL instead of downloading")
}

func runDownload(cmd *cobra.Command, args []string) error {
	opts := clientcli.DownloadOptions{
		RemotePath: args[0],
		URLOnly:    downloadURLOnly,
	}
	if len(args) > 1 {
		opts.LocalPath = args[1]
	}
	if downloadOutput != "" {
		opts.LocalPath = downloadOutput
	}
	if downloadStdout {
		opts.LocalPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		// metadata would corrupt the piped content
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
