package cdn

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openmined/cdnsync/internal/blob"
)

// Purger deletes every object under a prefix
type Purger struct {
	store     blob.ObjectStore
	inventory *RemoteInventory
	events    *emitter
}

func NewPurger(store blob.ObjectStore, sink EventSink) *Purger {
	return &Purger{
		store:     store,
		inventory: NewRemoteInventory(store),
		events:    newEmitter(sink),
	}
}

// Purge empties bucket (scoped to prefix when non-empty). An empty listing is a
// successful no-op. Any key left undeleted makes the purge fail.
func (p *Purger) Purge(ctx context.Context, bucket, prefix string) (*PurgeResult, error) {
	inventory, err := p.inventory.Fetch(ctx, bucket, prefix)
	if err != nil {
		return &PurgeResult{}, err
	}

	if len(inventory) == 0 {
		slog.Info("purge", "bucket", bucket, "status", "already empty")
		p.events.emit(Event{Type: EventBucketAlreadyEmpty, Bucket: bucket})
		return &PurgeResult{AlreadyEmpty: true}, nil
	}

	keys := make([]string, 0, len(inventory))
	for key := range inventory {
		keys = append(keys, key)
	}

	res, err := p.store.DeleteObjects(ctx, bucket, keys)
	if err != nil {
		deleted := 0
		if res != nil {
			deleted = len(res.Deleted)
		}
		return &PurgeResult{Deleted: deleted}, purgeError(bucket, err)
	}
	if res == nil {
		return &PurgeResult{}, purgeError(bucket, fmt.Errorf("no delete result for %d objects", len(keys)))
	}

	if res.Failed() {
		for _, e := range res.Errors {
			slog.Error("purge", "bucket", bucket, "key", e.Key, "code", e.Code, "error", e.Message)
		}
		first := res.Errors[0]
		return &PurgeResult{Deleted: len(res.Deleted)}, purgeError(bucket,
			fmt.Errorf("%d of %d objects not deleted, first %s: %s %s", len(res.Errors), len(keys), first.Key, first.Code, first.Message))
	}

	slog.Info("purge", "bucket", bucket, "deleted", len(res.Deleted))
	p.events.emit(Event{Type: EventBucketEmptied, Bucket: bucket, Count: len(res.Deleted)})
	return &PurgeResult{Deleted: len(res.Deleted)}, nil
}
