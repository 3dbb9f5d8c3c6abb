package cdn

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrConnectivity  = errors.New("connectivity error")
	ErrTransfer      = errors.New("transfer error")
	ErrPurge         = errors.New("purge error")
)

type Error struct {
	Kind   error
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Bucket != "" {
		msg += " bucket=" + e.Bucket
	}
	if e.Key != "" {
		msg += " key=" + e.Key
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func configError(op, format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Op: op, Err: fmt.Errorf(format, args...)}
}

func connectivityError(bucket string, err error) error {
	return &Error{Kind: ErrConnectivity, Op: "list", Bucket: bucket, Err: err}
}

func transferError(bucket, key string, err error) error {
	return &Error{Kind: ErrTransfer, Op: "upload", Bucket: bucket, Key: key, Err: err}
}

func purgeError(bucket string, err error) error {
	return &Error{Kind: ErrPurge, Op: "purge", Bucket: bucket, Err: err}
}
