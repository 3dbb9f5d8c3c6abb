package blob

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3

	// matches the manager's part size range so no single PUT carries a large body
	defaultMultipartThreshold = 8 << 20
)

type S3Config struct {
	Region             string        `mapstructure:"region" yaml:"region"`
	Endpoint           string        `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKey          string        `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey          string        `mapstructure:"secret_key" yaml:"secret_key,omitempty"`
	UsePathStyle       bool          `mapstructure:"use_path_style" yaml:"use_path_style,omitempty"`
	UseAccelerate      bool          `mapstructure:"use_accelerate" yaml:"use_accelerate,omitempty"`
	MaxAttempts        int           `mapstructure:"max_attempts" yaml:"max_attempts,omitempty"`

	// Timeout bounds connection setup and the wait for response headers.
	// It does not cover sending the request body.
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	MultipartThreshold int64         `mapstructure:"multipart_threshold" yaml:"multipart_threshold,omitempty"`
}

func (c *S3Config) Validate() error {
	if c.Region == "" && c.Endpoint == "" {
		return fmt.Errorf("region required")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return fmt.Errorf("access_key and secret_key must be set together")
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid endpoint URL %q", c.Endpoint)
		}
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must not be negative")
	}
	if c.MultipartThreshold < 0 {
		return fmt.Errorf("multipart_threshold must not be negative")
	}
	return nil
}

func (c *S3Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c *S3Config) maxAttempts() int {
	if c.MaxAttempts <= 0 {
		return defaultMaxAttempts
	}
	return c.MaxAttempts
}

func (c *S3Config) multipartThreshold() int64 {
	if c.MultipartThreshold <= 0 {
		return defaultMultipartThreshold
	}
	return c.MultipartThreshold
}
