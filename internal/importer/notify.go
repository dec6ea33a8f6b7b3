package importer

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Event is a progress or error notification
type Event struct {
	Message string
	Scope   string
	Err     error
}

// Notifier receives events. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

// Notifiers fans each event out to every non-nil notifier.
func Notifiers(ns ...Notifier) Notifier {
	var live []Notifier
	for _, n := range ns {
		if n != nil {
			live = append(live, n)
		}
	}
	return NotifierFunc(func(e Event) {
		for _, n := range live {
			n.Notify(e)
		}
	})
}

// Recorder keeps every event it receives
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records e.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Message
	}
	return out
}

// LogNotifier writes events to logrus
type LogNotifier struct{}

// Notify logs e at info, or at error when it carries one.
func (LogNotifier) Notify(e Event) {
	entry := log.WithField("scope", e.Scope)
	if e.Err != nil {
		entry.WithError(e.Err).Error(e.Message)
		return
	}
	entry.Info(e.Message)
}
