// Package events carries simulation lifecycle events out of the registry.
// Sinks must not block: the registry records events while serving requests.
package events

import "call-center-simulator/pkg/models"

type Sink interface {
	Record(event models.Event)
}

// NoopSink discards every event. Used when the event stream is disabled.
type NoopSink struct{}

func (NoopSink) Record(models.Event) {}
