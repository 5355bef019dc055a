// Package nats wraps the NATS connection used for routing events and the
// request-reply control surface. Swap outcomes go through JetStream so
// downstream settlement consumers can replay them; control requests use plain
// request-reply.
package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Config holds NATS connection configuration.
type Config struct {
	URL      string
	ClientID string
	Streams  []StreamConfig
}

// StreamConfig defines one JetStream stream.
type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
	MaxMsgs  int64
}

// Client wraps a NATS connection with router-specific publish helpers.
type Client struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
	config *Config
}

// NewClient connects to NATS and ensures the configured streams exist.
func NewClient(config *Config) (*Client, error) {
	logger := logrus.WithField("component", "nats-client")

	opts := []nats.Option{
		nats.Name(config.ClientID),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Errorf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.Errorf("NATS error: %v", err)
		}),
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{
		conn:   conn,
		js:     js,
		logger: logger,
		config: config,
	}

	if err := client.initializeStreams(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	return client, nil
}

func (c *Client) initializeStreams() error {
	for _, streamConfig := range c.config.Streams {
		cfg := &nats.StreamConfig{
			Name:     streamConfig.Name,
			Subjects: streamConfig.Subjects,
			MaxAge:   streamConfig.MaxAge,
			MaxMsgs:  streamConfig.MaxMsgs,
			Storage:  nats.FileStorage,
			Replicas: 1,
		}

		if _, err := c.js.StreamInfo(streamConfig.Name); err == nil {
			if _, err := c.js.UpdateStream(cfg); err != nil {
				return fmt.Errorf("failed to update stream %s: %w", streamConfig.Name, err)
			}
			c.logger.Infof("Updated stream: %s", streamConfig.Name)
		} else {
			if _, err := c.js.AddStream(cfg); err != nil {
				return fmt.Errorf("failed to create stream %s: %w", streamConfig.Name, err)
			}
			c.logger.Infof("Created stream: %s", streamConfig.Name)
		}
	}
	return nil
}

// Close closes the NATS connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// PublishLocalSwap publishes a swap that executed on the local venue.
func (c *Client) PublishLocalSwap(swap interface{}) error {
	return c.publish(SubjectSwapOptimizedLocal, swap)
}

// PublishCrossChainSwap publishes a swap that went through the bridge.
func (c *Client) PublishCrossChainSwap(swap interface{}) error {
	return c.publish(SubjectSwapExecutedCrossChain, swap)
}

// PublishVenueUpdate publishes a venue registry mutation.
func (c *Client) PublishVenueUpdate(index uint32, venue interface{}) error {
	return c.publish(VenueUpdateSubject(index), venue)
}

func (c *Client) publish(subject string, data interface{}) error {
	msg, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := c.js.Publish(subject, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	c.logger.Debugf("Published to %s", subject)
	return nil
}

// MessageHandler processes incoming messages.
type MessageHandler func(subject string, data []byte) error

// SubscribeSwaps subscribes to all swap outcome events.
func (c *Client) SubscribeSwaps(handler MessageHandler) (*Subscription, error) {
	return c.subscribe("swaps.>", handler)
}

// SubscribeVenueUpdates subscribes to venue registry mutations.
func (c *Client) SubscribeVenueUpdates(handler MessageHandler) (*Subscription, error) {
	return c.subscribe("venues.updated.*", handler)
}

func (c *Client) subscribe(subject string, handler MessageHandler) (*Subscription, error) {
	sub, err := c.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Subject, msg.Data); err != nil {
			c.logger.Errorf("Handler error for %s: %v", msg.Subject, err)
		}
		msg.Ack()
	}, nats.Durable(durableName(subject)))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.logger.Infof("Subscribed to %s", subject)
	return &Subscription{sub: sub, logger: c.logger}, nil
}

// SubscribeCore registers a plain (non-JetStream) subscription.
func (c *Client) SubscribeCore(subject string, handler func(data []byte)) (*nats.Subscription, error) {
	return c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Respond registers a request-reply handler on a control subject. The handler
// result is marshalled back to the requester; handler errors come back as an
// Error payload.
func (c *Client) Respond(subject string, handler func(data []byte) (interface{}, error)) (*nats.Subscription, error) {
	return c.conn.Subscribe(subject, func(msg *nats.Msg) {
		result, err := handler(msg.Data)
		if err != nil {
			payload, _ := json.Marshal(ErrorResponse{Error: err.Error()})
			_ = msg.Respond(payload)
			return
		}
		payload, err := json.Marshal(result)
		if err != nil {
			c.logger.Errorf("Failed to marshal reply for %s: %v", subject, err)
			return
		}
		_ = msg.Respond(payload)
	})
}

// Request performs a request-reply round trip on a control subject.
func (c *Client) Request(subject string, req interface{}, timeout time.Duration) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	msg, err := c.conn.Request(subject, payload, timeout)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subject, err)
	}
	return msg.Data, nil
}

// durableName derives a consumer name; durables may not contain dots.
func durableName(subject string) string {
	name := strings.NewReplacer(".", "-", ">", "all", "*", "any").Replace(subject)
	return "xrouter-" + name
}

// Subscription wraps a JetStream subscription.
type Subscription struct {
	sub    *nats.Subscription
	logger *logrus.Entry
}

// Unsubscribe removes the subscription.
func (s *Subscription) Unsubscribe() error {
	if err := s.sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	s.logger.Info("Unsubscribed")
	return nil
}
