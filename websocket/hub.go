package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventClick      = "click"
	EventConversion = "conversion"
)

// TrackingEvent is pushed to every connected admin.
type TrackingEvent struct {
	Type          string    `json:"type"`
	AffiliateID   uuid.UUID `json:"affiliate_id"`
	AffiliateName string    `json:"affiliate_name"`
	ReferralCode  string    `json:"referral_code"`
	ConversionID  uuid.UUID `json:"conversion_id"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	At            time.Time `json:"at"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

var clients = make(map[*Client]struct{})
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan TrackingEvent, 64)

// Publish queues ev for the hub without blocking the request that produced
// it. Events are dropped when the queue is full.
func Publish(ev TrackingEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	select {
	case Broadcast <- ev:
	default:
		log.Warn().Str("type", ev.Type).Msg("Live feed queue full, dropping event")
	}
}

func ConnectedClients() int {
	clientsMu.RLock()
	defer clientsMu.RUnlock()
	return len(clients)
}

func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Debug().Str("user_id", client.UserID.String()).Msg("Live feed client registered")
			clientsMu.Lock()
			clients[client] = struct{}{}
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Debug().Str("user_id", client.UserID.String()).Msg("Live feed client unregistered")
			clientsMu.Lock()
			delete(clients, client)
			clientsMu.Unlock()
		case event := <-Broadcast:
			fanOut(event)
		}
	}
}

func fanOut(event TrackingEvent) {
	var failed []*Client
	clientsMu.RLock()
	for client := range clients {
		if err := client.Conn.WriteJSON(event); err != nil {
			log.Warn().Err(err).Str("user_id", client.UserID.String()).Msg("Error sending live event")
			failed = append(failed, client)
		}
	}
	clientsMu.RUnlock()

	if len(failed) == 0 {
		return
	}
	clientsMu.Lock()
	for _, client := range failed {
		client.Conn.Close()
		delete(clients, client)
	}
	clientsMu.Unlock()
}
