package cdn

import "sync"

type EventType string

const (
	EventListingStarted     EventType = "listing-started"
	EventUploadStarted      EventType = "upload-started"
	EventObjectUploaded     EventType = "object-uploaded"
	EventUploadFailed       EventType = "upload-failed"
	EventUploadCompleted    EventType = "upload-completed"
	EventBucketAlreadyEmpty EventType = "bucket-already-empty"
	EventBucketEmptied      EventType = "bucket-emptied"
)

// Event is a progress notification. Only the fields relevant to Type are set.
type Event struct {
	Type   EventType
	Bucket string
	Key    string
	Size   int64
	Count  int
	Reason string
}

// EventSink receives progress events. Emit is never called concurrently
// for a single run, so implementations need no locking of their own.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}

// MultiSink forwards events to every non-nil sink in order
type MultiSink []EventSink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}

// emitter serializes delivery and tolerates a nil sink
type emitter struct {
	mu   sync.Mutex
	sink EventSink
}

func newEmitter(sink EventSink) *emitter {
	return &emitter{sink: sink}
}

func (e *emitter) emit(ev Event) {
	if e == nil || e.sink == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink.Emit(ev)
}
