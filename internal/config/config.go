package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/openmined/cdnsync/internal/assets"
	"github.com/openmined/cdnsync/internal/blob"
	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/openmined/cdnsync/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName    = "cdnsync.yaml"
	DefaultRoot        = "public"
	DefaultACL         = string(types.ObjectCannedACLPublicRead)
	DefaultConcurrency = 1
	DefaultLogLevel    = "warn"
	EnvPrefix          = "CDNSYNC"
)

type Config struct {
	// Root is the local directory mirrored into the bucket
	Root   string `mapstructure:"root" yaml:"root"`
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	// URL is the public storage base URL used for direct asset links
	URL       string          `mapstructure:"url" yaml:"url"`
	S3        blob.S3Config   `mapstructure:"s3" yaml:"s3"`
	FrontDoor FrontDoorConfig `mapstructure:"front_door" yaml:"front_door"`
	Upload    UploadConfig    `mapstructure:"upload" yaml:"upload"`
	Assets    assets.Rules    `mapstructure:"assets" yaml:"assets,omitempty"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics,omitempty"`
	LockDir   string          `mapstructure:"lock_dir" yaml:"lock_dir,omitempty"`

	Path string `mapstructure:"-" yaml:"-"`
}

type FrontDoorConfig struct {
	Enabled bool   `mapstructure:"use" yaml:"use"`
	URL     string `mapstructure:"cdn_url" yaml:"cdn_url"`
}

type UploadConfig struct {
	// Prefix is prepended verbatim to every object key
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
	ACL          string `mapstructure:"acl" yaml:"acl"`
	CacheControl string `mapstructure:"cache_control" yaml:"cache_control,omitempty"`

	// Expires is a duration from upload time, an RFC 3339 timestamp or an HTTP date
	Expires     string            `mapstructure:"expires" yaml:"expires,omitempty"`
	Metadata    map[string]string `mapstructure:"metadata" yaml:"metadata,omitempty"`
	Concurrency int               `mapstructure:"concurrency" yaml:"concurrency"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json,omitempty"`
}

type MetricsConfig struct {
	// Textfile, when set, receives Prometheus metrics after every run
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

func Default() *Config {
	return &Config{
		Root: DefaultRoot,
		Upload: UploadConfig{
			ACL:         DefaultACL,
			Concurrency: DefaultConcurrency,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

var envKeys = []string{
	"root", "bucket", "url", "lock_dir",
	"s3.region", "s3.endpoint", "s3.access_key", "s3.secret_key",
	"s3.use_path_style", "s3.use_accelerate", "s3.max_attempts", "s3.timeout", "s3.multipart_threshold",
	"front_door.use", "front_door.cdn_url",
	"upload.prefix", "upload.acl", "upload.cache_control", "upload.expires", "upload.concurrency",
	"log.level", "log.json", "metrics.textfile",
}

// SetDefaults registers defaults on v
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("root", d.Root)
	v.SetDefault("upload.acl", d.Upload.ACL)
	v.SetDefault("upload.concurrency", d.Upload.Concurrency)
	v.SetDefault("log.level", d.Log.Level)
}

// BindEnv maps CDNSYNC_* variables onto config keys, e.g. CDNSYNC_S3_REGION -> s3.region.
// Keys are bound explicitly because AutomaticEnv alone is not consulted by Unmarshal.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// Load decodes the merged viper state into a typed Config
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config: %v", cdn.ErrConfiguration, err)
	}
	cfg.Path = v.ConfigFileUsed()
	cfg.Bucket = strings.TrimRight(cfg.Bucket, "/")
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return invalid("bucket required")
	}
	if err := c.S3.Validate(); err != nil {
		return invalid("s3: %v", err)
	}
	if c.FrontDoor.Enabled {
		if !isHTTPURL(c.FrontDoor.URL) {
			return invalid("front_door.cdn_url must be an absolute URL when front_door.use is set, got %q", c.FrontDoor.URL)
		}
	} else if c.URL != "" && !isHTTPURL(c.URL) {
		return invalid("invalid url %q", c.URL)
	}
	if c.Upload.ACL != "" && !slices.Contains(types.ObjectCannedACLPrivate.Values(), types.ObjectCannedACL(c.Upload.ACL)) {
		return invalid("unsupported acl %q", c.Upload.ACL)
	}
	if err := cdn.ValidatePrefix(c.Upload.Prefix); err != nil {
		return invalid("upload.prefix %q must be relative without . or .. segments", c.Upload.Prefix)
	}
	if c.Upload.Concurrency < 1 {
		return invalid("upload.concurrency must be at least 1")
	}
	if _, err := ParseExpires(c.Upload.Expires, time.Now()); err != nil {
		return invalid("upload.expires: %v", err)
	}
	if err := c.Assets.Validate(); err != nil {
		return invalid("assets: %v", err)
	}
	return nil
}

// UploadOptions resolves the upload settings at time now
func (c *Config) UploadOptions(now time.Time) (cdn.UploadOptions, error) {
	expires, err := ParseExpires(c.Upload.Expires, now)
	if err != nil {
		return cdn.UploadOptions{}, invalid("upload.expires: %v", err)
	}
	return cdn.UploadOptions{
		Bucket:       c.Bucket,
		KeyPrefix:    c.Upload.Prefix,
		ACL:          c.Upload.ACL,
		CacheControl: c.Upload.CacheControl,
		Expires:      expires,
		Metadata:     c.Upload.Metadata,
		Concurrency:  c.Upload.Concurrency,
	}, nil
}

func (c *Config) URLConfig() cdn.URLConfig {
	return cdn.URLConfig{
		UseFrontDoor: c.FrontDoor.Enabled,
		FrontDoorURL: c.FrontDoor.URL,
		BaseURL:      c.URL,
		Bucket:       c.Bucket,
	}
}

// Save writes the config as YAML, creating parent directories
func (c *Config) Save(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// ParseExpires accepts a Go duration relative to now, an RFC 3339 timestamp,
// or an HTTP date. Empty means no Expires header.
func ParseExpires(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return time.Time{}, fmt.Errorf("duration %q must be positive", s)
		}
		return now.Add(d).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := http.ParseTime(s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as duration, RFC 3339 or HTTP date", s)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", cdn.ErrConfiguration, fmt.Sprintf(format, args...))
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
