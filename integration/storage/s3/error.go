package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/filevault/core/blob"
)

// classifyError maps S3 failures onto the core/blob sentinels so both storage
// backends fail the same way. Context errors pass through untouched for
// cancellation handling.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", operation, err)
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%w: %s", blob.ErrBlobNotFound, operation)
	}

	// HeadObject reports absence as NotFound rather than NoSuchKey.
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return fmt.Errorf("%w: %s", blob.ErrBlobNotFound, operation)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s", blob.ErrBlobNotFound, operation)
		default:
			return fmt.Errorf("%w: %s (code: %s): %v", blob.ErrUnavailable, operation, apiErr.ErrorCode(), err)
		}
	}

	return fmt.Errorf("%w: %s: %v", blob.ErrUnavailable, operation, err)
}
