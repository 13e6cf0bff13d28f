// Package notify sends alarm notifications to shoutrrr service URLs.
package notify

import (
	"fmt"
	"sync"

	"github.com/containrrr/shoutrrr"

	"github.com/sweeney/stopwatch/internal/logger"
	"github.com/sweeney/stopwatch/internal/logic"
)

// Notifier delivers notifications for stopwatch events.
type Notifier interface {
	// Notify queues a notification for the event if it warrants one.
	// It never blocks.
	Notify(event logic.Event)

	// Close stops delivery after the queue has been flushed.
	Close() error
}

// SendFunc delivers one message to one service URL.
type SendFunc func(url, message string) error

// queueSize bounds the notifications waiting for delivery.
const queueSize = 16

// Shoutrrr sends ALARM notifications from a background worker.
type Shoutrrr struct {
	urls  []string
	send  SendFunc
	queue chan string
	done  chan struct{}
	once  sync.Once
}

// NewShoutrrr starts a notifier for the given URLs. A nil send uses
// shoutrrr.Send.
func NewShoutrrr(urls []string, send SendFunc) *Shoutrrr {
	if send == nil {
		send = func(url, message string) error { return shoutrrr.Send(url, message) }
	}
	n := &Shoutrrr{
		urls:  urls,
		send:  send,
		queue: make(chan string, queueSize),
		done:  make(chan struct{}),
	}
	go n.worker()
	return n
}

// FormatMessage returns the notification text for an event, or "" when the
// event does not warrant a notification.
func FormatMessage(event logic.Event) string {
	if event.Type != logic.EventAlarm {
		return ""
	}
	return fmt.Sprintf("stopwatch alarm: countdown reached %s", event.Time)
}

// Notify queues an ALARM notification. Other events are ignored. If the
// queue is full the notification is dropped.
func (n *Shoutrrr) Notify(event logic.Event) {
	msg := FormatMessage(event)
	if msg == "" || len(n.urls) == 0 {
		return
	}
	select {
	case n.queue <- msg:
	default:
		logger.Warnf("notify: queue full, dropping %s notification", event.Type)
	}
}

func (n *Shoutrrr) worker() {
	defer close(n.done)
	for msg := range n.queue {
		for _, url := range n.urls {
			if err := n.send(url, msg); err != nil {
				logger.Errorf("notify: send failed: %v", err)
			}
		}
	}
}

// Close drains queued notifications and stops the worker.
func (n *Shoutrrr) Close() error {
	n.once.Do(func() { close(n.queue) })
	<-n.done
	return nil
}

// FakeNotifier records events for test assertions.
type FakeNotifier struct {
	mu     sync.Mutex
	Events []logic.Event
	Closed bool
}

// Notify records events that would produce a notification.
func (f *FakeNotifier) Notify(event logic.Event) {
	if FormatMessage(event) == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, event)
}

// Count returns the number of recorded notifications.
func (f *FakeNotifier) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Events)
}

// Close marks the notifier as closed.
func (f *FakeNotifier) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
