// Package listeners reacts to domain events after the store write.
package listeners

import (
	"context"
	"encoding/json"

	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
)

// Broadcaster pushes a message to every feed subscriber.
type Broadcaster interface {
	Broadcast(msg []byte) bool
}

// FeedMessage is what feed subscribers receive.
type FeedMessage struct {
	Event    string `json:"event"`
	Sweet    any    `json:"sweet"`
	Quantity int    `json:"quantity,omitempty"`
}

// Register wires the default listeners. Every non-nil feed receives the
// stock and catalogue events.
func Register(d *event.Dispatcher, feeds ...Broadcaster) {
	d.Listen("*", LogEvent)
	for _, feed := range feeds {
		if feed != nil {
			listenFeed(d, feed)
		}
	}
}

func listenFeed(d *event.Dispatcher, feed Broadcaster) {
	for _, name := range []string{
		services.EventPurchased,
		services.EventRestocked,
		services.EventLowStock,
		services.EventSweetCreated,
		services.EventSweetUpdated,
		services.EventSweetDeleted,
	} {
		d.Listen(name, Broadcast(feed))
	}
}

// LogEvent writes one structured line per event.
func LogEvent(ctx context.Context, e event.Event) {
	log := logger.WithCtx(ctx).With("event", e.Name)
	switch p := e.Payload.(type) {
	case services.StockChange:
		log.Info("event", "sweet_id", p.Sweet.ID, "quantity", p.Quantity, "stock", p.Sweet.Quantity)
	case services.SweetDeleted:
		log.Info("event", "sweet_id", p.ID)
	default:
		log.Info("event")
	}
}

// Message converts an event into its feed form.
func Message(e event.Event) FeedMessage {
	msg := FeedMessage{Event: e.Name, Sweet: e.Payload}
	if p, ok := e.Payload.(services.StockChange); ok {
		msg.Sweet = p.Sweet
		msg.Quantity = p.Quantity
	}
	return msg
}

// Broadcast publishes events on the stock feed.
func Broadcast(feed Broadcaster) event.Handler {
	return func(ctx context.Context, e event.Event) {
		body, err := json.Marshal(Message(e))
		if err != nil {
			logger.WithCtx(ctx).Error("feed: encode event", "event", e.Name, "error", err)
			return
		}
		if !feed.Broadcast(body) {
			logger.WithCtx(ctx).Warn("feed: broadcast dropped", "event", e.Name)
		}
	}
}
