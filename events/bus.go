// Package events fans task change notifications out to listeners of the
// same user. Delivery is fire-and-forget.
package events

import (
	"sync"
	"time"

	"clementus360/focusflow/types"
)

const subscriberBuffer = 16

type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan types.ChatEventData
	now    func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[int]chan types.ChatEventData),
		now:  time.Now,
	}
}

// Subscribe registers a listener for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(userID string) (<-chan types.ChatEventData, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan types.ChatEventData, subscriberBuffer)
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[int]chan types.ChatEventData)
	}
	b.subs[userID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[userID], id)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every listener of userID and returns how many
// received it. A listener whose buffer is full misses the event.
func (b *Bus) Publish(userID, eventType string, task *types.Task) int {
	event := types.ChatEventData{Type: eventType, Task: task, Timestamp: b.now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for _, ch := range b.subs[userID] {
		select {
		case ch <- event:
			delivered++
		default:
		}
	}
	return delivered
}

// Listeners reports the number of active listeners for userID.
func (b *Bus) Listeners(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
