package keybackend

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sagarc03/bucketgate"
)

// LoadCredentialsFromFile loads username/password pairs from a file.
//
// Files ending in ".json" must contain an array of objects:
//
//	[
//	  {"username": "alice", "password": "s3cret"},
//	  {"username": "bob", "password": "hunter2"}
//	]
//
// Any other file is read as CSV. The first row is a header and is skipped;
// the first two columns of every following row are username and password:
//
//	username,password
//	alice,s3cret
//	bob,hunter2
//
// Rows with an empty username or password are skipped. A username that
// fails bucketgate.IsValidUsername is an error.
func LoadCredentialsFromFile(path string) ([]bucketgate.Credential, error) {
	f, err := os.Open(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return parseJSON(f)
	}
	return ParseCSV(f)
}

// ParseCSV reads credentials from CSV, skipping the header row.
func ParseCSV(r io.Reader) ([]bucketgate.Credential, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var creds []bucketgate.Credential
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse credentials file: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 {
			continue
		}
		if rec[0] == "" || rec[1] == "" {
			continue
		}
		if !bucketgate.IsValidUsername(rec[0]) {
			return nil, fmt.Errorf("parse credentials file: %w: invalid username %q", bucketgate.ErrInvalidInput, rec[0])
		}
		creds = append(creds, bucketgate.Credential{Username: rec[0], Password: rec[1]})
	}

	return creds, nil
}

func parseJSON(r io.Reader) ([]bucketgate.Credential, error) {
	var pairs []bucketgate.Credential
	if err := json.NewDecoder(r).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	creds := make([]bucketgate.Credential, 0, len(pairs))
	for _, p := range pairs {
		if p.Username == "" || p.Password == "" {
			continue
		}
		if !bucketgate.IsValidUsername(p.Username) {
			return nil, fmt.Errorf("parse credentials file: %w: invalid username %q", bucketgate.ErrInvalidInput, p.Username)
		}
		creds = append(creds, p)
	}
	return creds, nil
}
