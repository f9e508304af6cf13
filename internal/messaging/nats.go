// Package messaging provides a NATS client wrapper for publishing chat
// events to external consumers. It handles connection lifecycle, subject-based
// subscriptions, and convenience methods for the room, private, presence, and
// reaction channels.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns for the chat event firehose.
const (
	SubjectRoom     = "chat.room"     // + .<room>
	SubjectPrivate  = "chat.private"  // + .<username>
	SubjectPresence = "chat.presence" // join/leave events
	SubjectReaction = "chat.reaction" // reaction updates
)

// Client wraps the NATS connection with helper methods for pub/sub.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "chatserver",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewClient connects to NATS with the given config and returns a ready client.
// It returns an error if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// PublishRoomMessage publishes a delivered room message to chat.room.<room>.
func (c *Client) PublishRoomMessage(room string, data []byte) error {
	return c.Publish(SubjectRoom+"."+room, data)
}

// PublishPrivateMessage publishes a delivered private message to
// chat.private.<username>, keyed by the recipient.
func (c *Client) PublishPrivateMessage(username string, data []byte) error {
	return c.Publish(SubjectPrivate+"."+username, data)
}

// PublishPresence publishes a join/leave event to chat.presence.
func (c *Client) PublishPresence(data []byte) error {
	return c.Publish(SubjectPresence, data)
}

// PublishReaction publishes a reaction update to chat.reaction.
func (c *Client) PublishReaction(data []byte) error {
	return c.Publish(SubjectReaction, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *Client) Subscribe(subject string, handler func(data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeRoom subscribes to the chat.room.<room> subject.
func (c *Client) SubscribeRoom(room string, handler func(data []byte)) error {
	return c.Subscribe(SubjectRoom+"."+room, handler)
}

// SubscribePresence subscribes to the chat.presence subject.
func (c *Client) SubscribePresence(handler func(data []byte)) error {
	return c.Subscribe(SubjectPresence, handler)
}

// Unsubscribe removes the subscription for the given subject, if any.
func (c *Client) Unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if ok {
		delete(c.subs, subject)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return sub.Unsubscribe()
}

// Close drains all subscriptions and closes the NATS connection.
func (c *Client) Close() {
	c.mu.Lock()
	for subject, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("[nats] unsubscribe %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)
	c.mu.Unlock()

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] drain: %v", err)
		c.conn.Close()
	}
}
