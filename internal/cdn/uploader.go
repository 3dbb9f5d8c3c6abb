package cdn

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/openmined/cdnsync/internal/blob"
	"github.com/openmined/cdnsync/internal/utils"
	"golang.org/x/sync/errgroup"
)

// UploadOptions controls where and how planned assets are written
type UploadOptions struct {
	Bucket       string
	KeyPrefix    string
	ACL          string
	CacheControl string
	Expires      time.Time
	Metadata     map[string]string

	// Concurrency above 1 enables parallel transfers
	Concurrency int

	// ContentType resolves the Content-Type of a local file.
	// Defaults to utils.DetectContentType.
	ContentType func(path string) string
}

// Uploader computes the upload plan for a set of local assets and executes it.
// Transfers stop at the first failure and are never retried; running again
// recomputes the plan against the bucket.
type Uploader struct {
	store     blob.ObjectStore
	inventory *RemoteInventory
	opts      UploadOptions
	events    *emitter
}

func NewUploader(store blob.ObjectStore, opts UploadOptions, sink EventSink) *Uploader {
	if opts.ContentType == nil {
		opts.ContentType = utils.DetectContentType
	}
	return &Uploader{
		store:     store,
		inventory: NewRemoteInventory(store),
		opts:      opts,
		events:    newEmitter(sink),
	}
}

// Plan lists the bucket and returns the assets that need uploading
func (u *Uploader) Plan(ctx context.Context, assets []*LocalAsset) (UploadPlan, error) {
	if u.opts.Bucket == "" {
		return nil, configError("plan", "bucket name required")
	}
	if err := ValidatePrefix(u.opts.KeyPrefix); err != nil {
		return nil, err
	}

	u.events.emit(Event{Type: EventListingStarted, Bucket: u.opts.Bucket})

	inventory, err := u.inventory.Fetch(ctx, u.opts.Bucket, u.opts.KeyPrefix)
	if err != nil {
		return nil, err
	}

	plan := Select(assets, inventory, u.opts.KeyPrefix)
	slog.Info("sync plan", "bucket", u.opts.Bucket, "local", len(assets), "remote", len(inventory), "upload", len(plan), "size", humanize.Bytes(uint64(plan.TotalSize())))
	return plan, nil
}

// Sync plans against the current bucket state and uploads the difference
func (u *Uploader) Sync(ctx context.Context, assets []*LocalAsset) (*SyncResult, error) {
	plan, err := u.Plan(ctx, assets)
	if err != nil {
		return &SyncResult{}, err
	}
	return u.Upload(ctx, plan)
}

// Upload transfers every asset of the plan. An empty plan succeeds without
// touching the network.
func (u *Uploader) Upload(ctx context.Context, plan UploadPlan) (*SyncResult, error) {
	if u.opts.Bucket == "" {
		return &SyncResult{}, configError("upload", "bucket name required")
	}
	if err := ValidatePrefix(u.opts.KeyPrefix); err != nil {
		return &SyncResult{}, err
	}

	if len(plan) == 0 {
		u.events.emit(Event{Type: EventUploadCompleted, Bucket: u.opts.Bucket, Count: 0})
		return &SyncResult{Succeeded: true}, nil
	}

	u.events.emit(Event{Type: EventUploadStarted, Bucket: u.opts.Bucket, Count: len(plan), Size: plan.TotalSize()})

	var result *SyncResult
	var err error
	if u.opts.Concurrency > 1 {
		result, err = u.uploadParallel(ctx, plan)
	} else {
		result, err = u.uploadSequential(ctx, plan)
	}
	if err != nil {
		return result, err
	}

	u.events.emit(Event{Type: EventUploadCompleted, Bucket: u.opts.Bucket, Count: result.Uploaded})
	return result, nil
}

func (u *Uploader) uploadSequential(ctx context.Context, plan UploadPlan) (*SyncResult, error) {
	result := &SyncResult{Planned: len(plan)}

	for _, asset := range plan {
		key, err := u.uploadOne(ctx, asset)
		if err != nil {
			u.fail(key, err)
			result.Failed = asset
			return result, transferError(u.opts.Bucket, key, err)
		}
		result.Uploaded++
	}

	result.Succeeded = true
	return result, nil
}

// uploadParallel runs up to Concurrency transfers at once. After the first failure
// no new transfer is started, in-flight ones run to completion, and the failure
// with the lowest plan index is reported.
func (u *Uploader) uploadParallel(ctx context.Context, plan UploadPlan) (*SyncResult, error) {
	var (
		g        errgroup.Group
		stopped  atomic.Bool
		uploaded atomic.Int64

		mu      sync.Mutex
		failIdx = -1
		failKey string
		failErr error
	)
	g.SetLimit(u.opts.Concurrency)

	for i, asset := range plan {
		if stopped.Load() {
			break
		}
		i, asset := i, asset
		g.Go(func() error {
			if stopped.Load() {
				return nil
			}
			key, err := u.uploadOne(ctx, asset)
			if err != nil {
				stopped.Store(true)
				u.fail(key, err)
				mu.Lock()
				if failIdx == -1 || i < failIdx {
					failIdx, failKey, failErr = i, key, err
				}
				mu.Unlock()
				return nil
			}
			uploaded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := &SyncResult{Planned: len(plan), Uploaded: int(uploaded.Load())}
	if failIdx >= 0 {
		result.Failed = plan[failIdx]
		return result, transferError(u.opts.Bucket, failKey, failErr)
	}
	result.Succeeded = true
	return result, nil
}

// uploadOne opens the file only for the duration of its PUT
func (u *Uploader) uploadOne(ctx context.Context, asset *LocalAsset) (string, error) {
	key := ObjectKey(u.opts.KeyPrefix, asset.RelPath)

	if err := ctx.Err(); err != nil {
		return key, err
	}

	file, err := os.Open(asset.AbsPath)
	if err != nil {
		return key, fmt.Errorf("open %s: %w", asset.RelPath, err)
	}
	defer file.Close()

	start := time.Now()
	_, err = u.store.PutObject(ctx, &blob.PutObjectParams{
		Bucket:       u.opts.Bucket,
		Key:          key,
		Body:         file,
		Size:         asset.Size,
		ACL:          u.opts.ACL,
		ContentType:  u.opts.ContentType(asset.AbsPath),
		CacheControl: u.opts.CacheControl,
		Expires:      u.opts.Expires,
		Metadata:     u.opts.Metadata,
	})
	if err != nil {
		return key, err
	}

	slog.Info("sync", "op", "upload", "key", key, "size", humanize.Bytes(uint64(asset.Size)), "took", time.Since(start))
	u.events.emit(Event{Type: EventObjectUploaded, Bucket: u.opts.Bucket, Key: key, Size: asset.Size})
	return key, nil
}

func (u *Uploader) fail(key string, err error) {
	slog.Error("sync", "op", "upload", "key", key, "error", err)
	u.events.emit(Event{Type: EventUploadFailed, Bucket: u.opts.Bucket, Key: key, Reason: err.Error()})
}
