package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath string
	// RemotePath is the destination folder. The server appends the file's
	// base name to it.
	RemotePath  string
	ContentType string // optional, auto-detect if empty
	Recursive   bool
	// Tag is sent as the addinfo header when both fields are set.
	Tag Tag
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Key       string `json:"key"`
	Size      int64  `json:"size_bytes"`
	Err       error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
	URLOnly    bool   // only resolve the presigned URL, do not fetch
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path,omitempty"`
	URL         string `json:"url"`
	Tags        []Tag  `json:"tags"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size_bytes,omitempty"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Paths []string
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// Tag is a key/value pair attached to an object.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// IsZero reports whether the tag is incomplete and would not be sent.
func (t Tag) IsZero() bool {
	return t.Key == "" || t.Value == ""
}

// serverDownload mirrors the JSON body of a successful download request.
type serverDownload struct {
	URL  string `json:"Download your file here"`
	Tags []Tag  `json:"Tags"`
}

// serverError mirrors the JSON body of an error response.
type serverError struct {
	Detail string `json:"detail"`
}
