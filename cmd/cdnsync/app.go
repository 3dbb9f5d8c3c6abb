package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/openmined/cdnsync/internal/blob"
	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/openmined/cdnsync/internal/config"
	"github.com/openmined/cdnsync/internal/metrics"
	"github.com/openmined/cdnsync/internal/runlock"
	"github.com/prometheus/client_golang/prometheus"
)

// newObjectStore is replaced in tests
var newObjectStore = func(ctx context.Context, cfg *config.Config) (blob.ObjectStore, error) {
	return blob.NewS3BackendWithConfig(ctx, &cfg.S3)
}

// run holds what a bucket-mutating command needs for one invocation
type run struct {
	cfg     *config.Config
	store   blob.ObjectStore
	sink    cdn.EventSink
	metrics *metrics.Sink
	lock    *runlock.Lock
}

func newRun(ctx context.Context, cfg *config.Config, out io.Writer) (*run, error) {
	lock := runlock.New(cfg.LockDir, cfg.Bucket)
	if err := lock.TryLock(); err != nil {
		if errors.Is(err, runlock.ErrLocked) {
			return nil, fmt.Errorf("%w (%s)", err, lock.Path())
		}
		return nil, err
	}

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("%w: %v", cdn.ErrConfiguration, err)
	}

	r := &run{cfg: cfg, store: store, lock: lock}
	sinks := cdn.MultiSink{newConsoleSink(out)}
	if cfg.Metrics.Textfile != "" {
		r.metrics = metrics.NewSink(prometheus.NewRegistry())
		sinks = append(sinks, r.metrics)
	}
	r.sink = sinks
	return r, nil
}

// Close flushes metrics and releases the bucket lock
func (r *run) Close() {
	if r.metrics != nil {
		if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
			slog.Warn("metrics textfile", "path", r.cfg.Metrics.Textfile, "error", err)
		}
	}
	if err := r.lock.Unlock(); err != nil {
		slog.Warn("release lock", "path", r.lock.Path(), "error", err)
	}
}
