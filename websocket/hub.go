package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// DonationEvent is pushed to connected manager dashboards whenever a
// donation reaches completed.
type DonationEvent struct {
	DonationID   string    `json:"donation_id"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	DonorName    string    `json:"donor_name"`
	ReferralCode *string   `json:"referral_code,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

var (
	clients   = make(map[*websocket.Conn]bool)
	clientsMu sync.Mutex

	Register   = make(chan *websocket.Conn)
	Unregister = make(chan *websocket.Conn)
	broadcast  = make(chan DonationEvent, 16)
)

// PublishDonation hands an event to the hub without blocking the caller.
// Events are dropped when no hub is running or the buffer is full.
func PublishDonation(event DonationEvent) {
	select {
	case broadcast <- event:
	default:
	}
}

func RunHub() {
	for {
		select {
		case conn := <-Register:
			clientsMu.Lock()
			clients[conn] = true
			total := len(clients)
			clientsMu.Unlock()
			log.Printf("Dashboard feed client connected (%d total)", total)
		case conn := <-Unregister:
			clientsMu.Lock()
			delete(clients, conn)
			clientsMu.Unlock()
		case event := <-broadcast:
			clientsMu.Lock()
			for conn := range clients {
				if err := conn.WriteJSON(event); err != nil {
					log.Printf("Error pushing donation event: %v", err)
					conn.Close()
					delete(clients, conn)
				}
			}
			clientsMu.Unlock()
		}
	}
}

// FeedHandler keeps a dashboard connection open until the client goes away.
func FeedHandler(conn *websocket.Conn) {
	Register <- conn
	defer func() {
		Unregister <- conn
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
