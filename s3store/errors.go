package s3store

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sagarc03/bucketgate"
)

var (
	ErrInvalidConfig = errors.New("s3store: invalid configuration")
	ErrAccessDenied  = errors.New("s3store: access denied")
)

// wrapS3Error normalizes SDK errors onto sentinel errors. The original error
// is kept as text only, so callers match with errors.Is on the sentinels.
func wrapS3Error(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s: %w: %v", op, bucketgate.ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%s: %w: %v", op, ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%s: %w: %v", op, bucketgate.ErrNotFound, err)
	}

	return fmt.Errorf("%s: %v", op, err)
}
