package cdn

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openmined/cdnsync/internal/blob"
)

var errTruncatedWithoutToken = errors.New("listing truncated without continuation token")

// RemoteInventory builds the full key → metadata view of a bucket prefix
type RemoteInventory struct {
	store    blob.ObjectStore
	pageSize int32
}

func NewRemoteInventory(store blob.ObjectStore) *RemoteInventory {
	return &RemoteInventory{store: store}
}

// WithPageSize caps keys per listing request. Zero leaves the backend default.
func (r *RemoteInventory) WithPageSize(n int32) *RemoteInventory {
	r.pageSize = n
	return r
}

// Fetch lists every object under prefix, one page at a time, and returns them only
// once the listing is complete. Any failure is a connectivity error; a partial
// inventory is never returned.
func (r *RemoteInventory) Fetch(ctx context.Context, bucket, prefix string) (Inventory, error) {
	if bucket == "" {
		return nil, configError("list", "bucket name required")
	}

	inventory := make(Inventory)
	token := ""
	pages := 0

	for {
		page, err := r.store.ListObjectsPage(ctx, &blob.ListObjectsParams{
			Bucket:            bucket,
			Prefix:            prefix,
			ContinuationToken: token,
			MaxKeys:           r.pageSize,
		})
		if err != nil {
			return nil, connectivityError(bucket, err)
		}
		pages++

		for _, obj := range page.Objects {
			inventory[obj.Key] = &RemoteObject{
				Key:          obj.Key,
				Size:         obj.Size,
				LastModified: obj.LastModified,
			}
		}

		if !page.IsTruncated {
			break
		}
		if page.NextContinuationToken == "" {
			return nil, connectivityError(bucket, errTruncatedWithoutToken)
		}
		token = page.NextContinuationToken
	}

	slog.Debug("inventory", "bucket", bucket, "prefix", prefix, "pages", pages, "objects", len(inventory))
	return inventory, nil
}
