// Package notify implements the one-directional push channel from the
// privileged side to display surfaces, in-process and as Server-Sent Events.
package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/jotter/internal/models"
)

// Publisher is the sending half of the channel.
type Publisher interface {
	Publish(n models.Notification)
}

// Broker fans notifications out to subscribers.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (subscribers + refresh throttle timestamps). Public methods communicate with
// this loop through channels, so no mutexes are required. Delivery is at most
// once: a subscriber whose buffer is full misses the message.
type Broker struct {
	refreshMin time.Duration

	subscribeCh   chan chan models.Notification
	unsubscribeCh chan chan models.Notification
	publishCh     chan models.Notification
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker. filesChanged notifications for the same
// directory arriving within refreshThrottle of the previous one are dropped.
func NewBroker(refreshThrottle time.Duration) *Broker {
	if refreshThrottle < 0 {
		refreshThrottle = 0
	}

	b := &Broker{
		refreshMin:    refreshThrottle,
		subscribeCh:   make(chan chan models.Notification),
		unsubscribeCh: make(chan chan models.Notification),
		publishCh:     make(chan models.Notification, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan models.Notification]struct{})
	lastRefresh := make(map[string]time.Time)

	broadcast := func(n models.Notification) {
		for ch := range clients {
			select {
			case ch <- n:
			default:
				// Subscriber buffer full; skip to avoid blocking the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case n := <-b.publishCh:
			if n.Kind == models.NotifyFilesChanged && b.refreshMin > 0 {
				now := time.Now()
				if now.Sub(lastRefresh[n.Directory]) < b.refreshMin {
					continue
				}
				lastRefresh[n.Directory] = now
			}
			broadcast(n)

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops the loop and closes all subscriber channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a subscriber and returns its channel.
func (b *Broker) Subscribe() chan models.Notification {
	ch := make(chan models.Notification, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(ch chan models.Notification) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of subscribers.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends a notification to all subscribers.
func (b *Broker) Publish(n models.Notification) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- n:
	case <-b.stopped:
	}
}

// Encode renders n as one SSE frame.
func Encode(n models.Notification) ([]byte, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", n.Kind, payload)), nil
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Register before answering so a client that has seen the response
	// headers cannot miss a notification.
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			frame, err := Encode(n)
			if err != nil {
				continue
			}
			_, _ = w.Write(frame)
			flusher.Flush()
		}
	}
}
