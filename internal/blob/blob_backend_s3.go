package blob

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
	"github.com/openmined/cdnsync/internal/utils"
	"github.com/openmined/cdnsync/internal/version"
)

type S3Backend struct {
	s3Client S3API
	uploader *manager.Uploader
	config   *S3Config
}

func NewS3Backend(s3Client S3API, cfg *S3Config) *S3Backend {
	return &S3Backend{
		s3Client: s3Client,
		uploader: manager.NewUploader(s3Client),
		config:   cfg,
	}
}

// newHTTPClient sets no overall client timeout since that would include
// writing the request body. Uploads are bounded by ctx instead.
func newHTTPClient(cfg *S3Config) *http.Client {
	timeout := cfg.timeout()
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          200,
			MaxIdleConnsPerHost:   100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: timeout,
			ForceAttemptHTTP2:     true,
		},
	}
}

func NewS3BackendWithConfig(ctx context.Context, cfg *S3Config) (*S3Backend, error) {
	httpClient := newHTTPClient(cfg)

	opts := []func(*config.LoadOptions) error{
		config.WithHTTPClient(httpClient),
		config.WithAppID(version.AppID()),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), cfg.maxAttempts())
		}),
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	} else {
		// S3-compatible endpoints ignore the region but the signer needs one
		opts = append(opts, config.WithRegion("us-east-1"))
	}
	// without static keys the default credential chain applies
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	slog.Debug("s3 client", "region", cfg.Region, "endpoint", cfg.Endpoint, "access_key", utils.MaskSecret(cfg.AccessKey), "path_style", cfg.UsePathStyle)

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	awsClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
		if cfg.UseAccelerate {
			o.UseAccelerate = true
		}
	})

	return NewS3Backend(awsClient, cfg), nil
}

// ===================================================================================================

func (s *S3Backend) ListObjectsPage(ctx context.Context, params *ListObjectsParams) (*ListObjectsPage, error) {
	if params.Bucket == "" {
		return nil, ErrBucketMissing
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(params.Bucket),
	}
	if params.Prefix != "" {
		input.Prefix = aws.String(params.Prefix)
	}
	if params.ContinuationToken != "" {
		input.ContinuationToken = aws.String(params.ContinuationToken)
	}
	if params.MaxKeys > 0 {
		input.MaxKeys = aws.Int32(params.MaxKeys)
	}

	resp, err := s.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, wrapError("list", params.Bucket, "", err)
	}

	page := &ListObjectsPage{
		Objects:               make([]*BlobInfo, 0, len(resp.Contents)),
		IsTruncated:           aws.ToBool(resp.IsTruncated),
		NextContinuationToken: aws.ToString(resp.NextContinuationToken),
	}
	for _, obj := range resp.Contents {
		page.Objects = append(page.Objects, &BlobInfo{
			Key:          aws.ToString(obj.Key),
			ETag:         strings.ReplaceAll(aws.ToString(obj.ETag), "\"", ""),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
		})
	}

	return page, nil
}

// ===================================================================================================

// PutObject uploads a single object. Bodies at or above the multipart threshold
// go through the SDK upload manager.
func (s *S3Backend) PutObject(ctx context.Context, params *PutObjectParams) (*PutObjectResponse, error) {
	if params.Bucket == "" {
		return nil, ErrBucketMissing
	}
	if !ValidateKey(params.Key) {
		return nil, wrapError("put", params.Bucket, params.Key, ErrInvalidKey)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(params.Bucket),
		Key:    aws.String(params.Key),
		Body:   params.Body,
	}
	if params.ACL != "" {
		input.ACL = types.ObjectCannedACL(params.ACL)
	}
	if params.ContentType != "" {
		input.ContentType = aws.String(params.ContentType)
	}
	if params.CacheControl != "" {
		input.CacheControl = aws.String(params.CacheControl)
	}
	if !params.Expires.IsZero() {
		input.Expires = aws.Time(params.Expires)
	}
	if len(params.Metadata) > 0 {
		input.Metadata = params.Metadata
	}

	if params.Size >= s.config.multipartThreshold() {
		return s.putMultipart(ctx, params, input)
	}

	input.ContentLength = aws.Int64(params.Size)
	resp, err := s.s3Client.PutObject(ctx, input)
	if err != nil {
		return nil, wrapError("put", params.Bucket, params.Key, err)
	}

	// s3.PutObjectOutput does not have LastModified
	return &PutObjectResponse{
		Key:          params.Key,
		Size:         params.Size,
		Version:      aws.ToString(resp.VersionId),
		ETag:         strings.ReplaceAll(aws.ToString(resp.ETag), "\"", ""),
		LastModified: time.Now().UTC(),
	}, nil
}

func (s *S3Backend) putMultipart(ctx context.Context, params *PutObjectParams, input *s3.PutObjectInput) (*PutObjectResponse, error) {
	slog.Debug("s3 multipart upload", "key", params.Key, "size", humanize.Bytes(uint64(params.Size)))

	resp, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return nil, wrapError("put", params.Bucket, params.Key, err)
	}

	return &PutObjectResponse{
		Key:          params.Key,
		Size:         params.Size,
		Version:      aws.ToString(resp.VersionID),
		ETag:         strings.ReplaceAll(aws.ToString(resp.ETag), "\"", ""),
		LastModified: time.Now().UTC(),
	}, nil
}

// ===================================================================================================

// DeleteObjects removes keys in batches of up to 1000.
// A failed request stops the remaining batches; per-key failures are collected.
func (s *S3Backend) DeleteObjects(ctx context.Context, bucket string, keys []string) (*DeleteObjectsResult, error) {
	if bucket == "" {
		return nil, ErrBucketMissing
	}

	result := &DeleteObjectsResult{
		Deleted: make([]string, 0, len(keys)),
	}

	for _, batch := range chunkKeys(keys, maxDeleteBatch) {
		objects := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		resp, err := s.s3Client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(false),
			},
		})
		if err != nil {
			return result, wrapError("delete", bucket, "", err)
		}

		for _, d := range resp.Deleted {
			result.Deleted = append(result.Deleted, aws.ToString(d.Key))
		}
		for _, e := range resp.Errors {
			result.Errors = append(result.Errors, DeleteError{
				Key:     aws.ToString(e.Key),
				Code:    aws.ToString(e.Code),
				Message: aws.ToString(e.Message),
			})
		}
	}

	return result, nil
}

var _ ObjectStore = (*S3Backend)(nil)
