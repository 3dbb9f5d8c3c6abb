package blob

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	ErrInvalidKey    = errors.New("invalid key")
	ErrBucketMissing = errors.New("bucket name required")
)

// Error carries the operation and object a storage call failed on,
// along with the service error code when the backend returned one.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Code   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("s3 %s", e.Op)
	if e.Bucket != "" {
		msg += " bucket=" + e.Bucket
	}
	if e.Key != "" {
		msg += " key=" + e.Key
	}
	if e.Code != "" {
		msg += " code=" + e.Code
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, bucket, key string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Op: op, Bucket: bucket, Key: key, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
	}
	return e
}

// ErrorCode returns the service error code carried by err, if any
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
