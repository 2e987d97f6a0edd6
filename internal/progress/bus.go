// Package progress is the in-process event surface of a discovery run: the
// scheduler emits, observers replay and subscribe. A Bus is an explicit
// instance owned by the caller, never a package singleton.
package progress

import (
	"log"
	"sync"

	"github.com/rcanales/brewscout/internal/model"
)

// DefaultBufferSize is how many recent events a Bus retains for late
// subscribers.
const DefaultBufferSize = 200

// Aggregates are the running totals maintained from the event stream.
type Aggregates struct {
	RunID         string
	TotalPoints   int
	AreasSearched int
	PlacesFound   int
	APICallsUsed  int
	Subdivisions  int
	Aborted       bool
	Done          bool
}

// Bus is a bounded event log plus broadcaster. Emit is synchronous: it
// updates aggregates, appends to a fixed-capacity ring (dropping the oldest
// once full), then invokes every subscriber inline. Subscribers must not call
// back into the Bus from their callback.
type Bus struct {
	mu sync.Mutex

	subs    map[int]func(Event)
	nextSub int

	buf   []Event
	start int
	count int
	seq   int

	agg     Aggregates
	summary *model.Summary

	logger *log.Logger
}

// New builds a Bus retaining up to bufferSize events (DefaultBufferSize when
// zero or negative). Subscriber panics are logged to logger when non-nil.
func New(bufferSize int, logger *log.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Bus{
		subs:   make(map[int]func(Event)),
		buf:    make([]Event, bufferSize),
		logger: logger,
	}
}

// Subscribe registers a callback and synchronously replays the buffered
// events, oldest first, before returning. The returned function removes the
// subscription and is safe to call more than once.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 0; i < b.count; i++ {
		b.deliver(fn, b.buf[(b.start+i)%len(b.buf)])
	}

	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Emit stamps the event, folds it into the aggregates, buffers it, and
// notifies every subscriber. One subscriber panicking does not stop the rest.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev.Seq = b.seq
	b.apply(ev)

	if b.count == len(b.buf) {
		b.buf[b.start] = ev
		b.start = (b.start + 1) % len(b.buf)
	} else {
		b.buf[(b.start+b.count)%len(b.buf)] = ev
		b.count++
	}

	for _, fn := range b.subs {
		b.deliver(fn, ev)
	}
}

// Snapshot returns the retained events oldest-first, the current aggregates,
// and the latest run summary (nil until a run completes).
func (b *Bus) Snapshot() ([]Event, Aggregates, *model.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]Event, b.count)
	for i := 0; i < b.count; i++ {
		events[i] = b.buf[(b.start+i)%len(b.buf)]
	}
	return events, b.agg, b.summary
}

// Reset clears the buffer, aggregates, and summary. Subscriptions survive.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.start, b.count, b.seq = 0, 0, 0
	b.agg = Aggregates{}
	b.summary = nil
}

func (b *Bus) apply(ev Event) {
	switch ev.Type {
	case EventStart:
		b.agg = Aggregates{RunID: ev.RunID, TotalPoints: ev.TotalPoints}
		b.summary = nil
	case EventSearchComplete:
		b.agg.AreasSearched++
		b.agg.PlacesFound += ev.PlacesFound
		b.agg.APICallsUsed += ev.APICallsUsed
	case EventSubdivisionCreated:
		b.agg.Subdivisions += len(ev.ChildIDs)
	case EventAbort:
		b.agg.Aborted = true
		b.agg.Done = true
	case EventComplete:
		b.agg.Done = true
		if ev.Summary != nil {
			b.summary = ev.Summary
		}
	}
}

func (b *Bus) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Printf("SUBSCRIBER_PANIC event=%s err=%v", ev.Type, r)
		}
	}()
	fn(ev)
}
