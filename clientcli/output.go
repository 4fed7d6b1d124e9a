package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formatter renders command results.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatError(w io.Writer, err error) error
}

// NewFormatter picks JSON or human output. Quiet only affects human output.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter writes one line per result. Failures are always written;
// successes are suppressed when Quiet is set.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) printf(w io.Writer, failed bool, format string, args ...any) {
	if f.Quiet && !failed {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for _, r := range results {
		if r.Err != nil {
			f.printf(w, true, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		f.printf(w, false, "Uploaded: %s -> %s (%s)\n", r.LocalPath, r.Key, formatSize(r.Size))
	}
	return nil
}

// FormatDownload prints only the URL when nothing was fetched.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	switch result.LocalPath {
	case "":
		f.printf(w, false, "%s\n", result.URL)
	case "-":
		f.printf(w, false, "Downloaded: %s (%s)\n", result.RemotePath, formatSize(result.Size))
	default:
		f.printf(w, false, "Downloaded: %s -> %s (%s)\n", result.RemotePath, result.LocalPath, formatSize(result.Size))
	}

	for _, tag := range result.Tags {
		f.printf(w, false, "  Tag: %s=%s\n", tag.Key, tag.Value)
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for _, r := range results {
		if r.Err != nil {
			f.printf(w, true, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		f.printf(w, false, "Deleted: %s\n", r.Path)
	}
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	f.printf(w, true, "Error: %v\n", err)
	return nil
}

// JSONFormatter writes indented JSON documents.
type JSONFormatter struct{}

type uploadRecord struct {
	LocalPath string `json:"local_path"`
	Key       string `json:"key,omitempty"`
	Size      int64  `json:"size_bytes,omitempty"`
	Error     string `json:"error,omitempty"`
}

type deleteRecord struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	records := make([]uploadRecord, 0, len(results))
	for _, r := range results {
		rec := uploadRecord{LocalPath: r.LocalPath, Error: errText(r.Err)}
		if r.Err == nil {
			rec.Key, rec.Size = r.Key, r.Size
		}
		records = append(records, rec)
	}
	return writeJSON(w, records)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	records := make([]deleteRecord, 0, len(results))
	for _, r := range results {
		records = append(records, deleteRecord{Path: r.Path, Deleted: r.Deleted, Error: errText(r.Err)})
	}
	return writeJSON(w, map[string][]deleteRecord{"results": records})
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, map[string]string{"error": err.Error()})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize renders n with a binary unit and one decimal, e.g. "1.5 MB".
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	value := float64(n) / unit
	suffixes := []string{"KB", "MB", "GB", "TB"}
	i := 0
	for value >= unit && i < len(suffixes)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", value, suffixes[i])
}
