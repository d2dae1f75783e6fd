package websocket

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	received []TrackingEvent
	fail     bool
	closed   bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.received = append(f.received, v.(TrackingEvent))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func resetClients(t *testing.T) {
	t.Helper()
	clientsMu.Lock()
	clients = make(map[*Client]struct{})
	clientsMu.Unlock()
	t.Cleanup(func() {
		clientsMu.Lock()
		clients = make(map[*Client]struct{})
		clientsMu.Unlock()
	})
}

func addClient(conn Conn) *Client {
	client := &Client{UserID: uuid.New(), Conn: conn}
	clientsMu.Lock()
	clients[client] = struct{}{}
	clientsMu.Unlock()
	return client
}

func TestFanOutDropsBrokenClients(t *testing.T) {
	resetClients(t)
	healthy := &fakeConn{}
	broken := &fakeConn{fail: true}
	addClient(healthy)
	addClient(broken)
	require.Equal(t, 2, ConnectedClients())

	ev := TrackingEvent{Type: EventConversion, ReferralCode: "ALICES-AB12", AmountCents: 4999}
	fanOut(ev)

	require.Len(t, healthy.received, 1)
	assert.Equal(t, ev, healthy.received[0])
	assert.True(t, broken.closed)
	assert.False(t, healthy.closed)
	assert.Equal(t, 1, ConnectedClients())
}

func TestPublishDoesNotBlockWhenQueueIsFull(t *testing.T) {
	for len(Broadcast) > 0 {
		<-Broadcast
	}
	t.Cleanup(func() {
		for len(Broadcast) > 0 {
			<-Broadcast
		}
	})

	for i := 0; i < cap(Broadcast)+10; i++ {
		Publish(TrackingEvent{Type: EventClick})
	}
	assert.Equal(t, cap(Broadcast), len(Broadcast))

	ev := <-Broadcast
	assert.Equal(t, EventClick, ev.Type)
	assert.False(t, ev.At.IsZero())
}
