package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var (
	uploadRecursive   bool
	uploadContentType string
	uploadTag         string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-folder]",
	Short: "Upload files to the server",
	Long: `Upload files into your area of the bucket.

The remote folder is optional; the file keeps its own name inside it.

Examples:
  bucketgate-cli upload ./report.pdf
  bucketgate-cli upload ./report.pdf documents/2024
  bucketgate-cli upload --tag project=apollo ./report.pdf documents
  bucketgate-cli upload -r ./images/ media/images`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
	uploadCmd.Flags().StringVar(&uploadTag, "tag", "", "attach a tag as key=value")
}

func runUpload(cmd *cobra.Command, args []string) error {
	opts := clientcli.UploadOptions{
		LocalPath:   args[0],
		ContentType: uploadContentType,
		Recursive:   uploadRecursive,
	}
	if len(args) > 1 {
		opts.RemotePath = args[1]
	}

	if uploadTag != "" {
		key, value, ok := strings.Cut(uploadTag, "=")
		if !ok || key == "" || value == "" {
			return errors.New("--tag must be key=value")
		}
		opts.Tag = clientcli.Tag{Key: key, Value: value}
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), opts)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	if clientcli.HasUploadErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
