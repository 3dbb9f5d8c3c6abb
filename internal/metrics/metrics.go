package metrics

import (
	"fmt"
	"time"

	"github.com/openmined/cdnsync/internal/cdn"
	"github.com/openmined/cdnsync/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cdnsync"

// Sink turns sync events into Prometheus metrics. It is meant for one-shot runs,
// so the registry is exported as a node_exporter textfile rather than served.
type Sink struct {
	registry *prometheus.Registry
	metrics  struct {
		listings        prometheus.Counter
		plannedObjects  prometheus.Gauge
		plannedBytes    prometheus.Gauge
		objectsUploaded prometheus.Counter
		bytesUploaded   prometheus.Counter
		uploadFailures  prometheus.Counter
		objectsDeleted  prometheus.Counter
		lastSuccess     *prometheus.GaugeVec
	}
	now func() time.Time
}

func NewSink(registry *prometheus.Registry) *Sink {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	s := &Sink{registry: registry, now: time.Now}

	s.metrics.listings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_total",
		Help:      "Bucket listings started",
	})
	s.metrics.plannedObjects = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "planned_objects",
		Help:      "Objects in the current upload plan",
	})
	s.metrics.plannedBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "planned_bytes",
		Help:      "Bytes in the current upload plan",
	})
	s.metrics.objectsUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_uploaded_total",
		Help:      "Objects uploaded successfully",
	})
	s.metrics.bytesUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_uploaded_total",
		Help:      "Bytes uploaded successfully",
	})
	s.metrics.uploadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_failures_total",
		Help:      "Object uploads that failed",
	})
	s.metrics.objectsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "objects_deleted_total",
		Help:      "Objects removed by purge",
	})
	s.metrics.lastSuccess = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run per operation",
	}, []string{"op"})

	registry.MustRegister(
		s.metrics.listings,
		s.metrics.plannedObjects,
		s.metrics.plannedBytes,
		s.metrics.objectsUploaded,
		s.metrics.bytesUploaded,
		s.metrics.uploadFailures,
		s.metrics.objectsDeleted,
		s.metrics.lastSuccess,
	)
	return s
}

func (s *Sink) Emit(e cdn.Event) {
	switch e.Type {
	case cdn.EventListingStarted:
		s.metrics.listings.Inc()
	case cdn.EventUploadStarted:
		s.metrics.plannedObjects.Set(float64(e.Count))
		s.metrics.plannedBytes.Set(float64(e.Size))
	case cdn.EventObjectUploaded:
		s.metrics.objectsUploaded.Inc()
		s.metrics.bytesUploaded.Add(float64(e.Size))
	case cdn.EventUploadFailed:
		s.metrics.uploadFailures.Inc()
	case cdn.EventUploadCompleted:
		if e.Count == 0 {
			s.metrics.plannedObjects.Set(0)
			s.metrics.plannedBytes.Set(0)
		}
		s.markSuccess("sync")
	case cdn.EventBucketEmptied:
		s.metrics.objectsDeleted.Add(float64(e.Count))
		s.markSuccess("purge")
	case cdn.EventBucketAlreadyEmpty:
		s.markSuccess("purge")
	}
}

func (s *Sink) markSuccess(op string) {
	s.metrics.lastSuccess.WithLabelValues(op).Set(float64(s.now().Unix()))
}

func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}

// WriteTextfile atomically writes the registry in text exposition format
func (s *Sink) WriteTextfile(path string) error {
	if err := utils.EnsureParent(path); err != nil {
		return fmt.Errorf("metrics textfile dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

var _ cdn.EventSink = (*Sink)(nil)
