// Package eventbus fans out tracker activity to in-process subscribers.
package eventbus

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Type string

const (
	TypeAssignmentCreated Type = "assignment.created"
	TypeAssignmentUpdated Type = "assignment.updated"
	TypeSnapshotExported  Type = "snapshot.exported"
	TypeSnapshotImported  Type = "snapshot.imported"
)

// Event is a single activity record. AssignmentID is zero for snapshot
// events, which concern the whole collection.
type Event struct {
	ID           string
	Type         Type
	AssignmentID int
	Detail       string
	CreatedAt    time.Time
}

type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan *Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// buffer full, drop event for this subscriber
		}
	}
}

func (b *Bus) PublishNew(eventType Type, assignmentID int, detail string) {
	b.Publish(&Event{
		ID:           ulid.Make().String(),
		Type:         eventType,
		AssignmentID: assignmentID,
		Detail:       detail,
		CreatedAt:    time.Now(),
	})
}
