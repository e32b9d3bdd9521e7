package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
)

// DefaultSubject is the NATS subject events are published on.
const DefaultSubject = "autodiag.diagnosis.completed"

// natsHeaderCarrier adapts nats.Msg headers for OTel TextMapCarrier.
type natsHeaderCarrier nats.Msg

func (c *natsHeaderCarrier) Get(key string) string {
	if c.Header == nil {
		return ""
	}
	return c.Header.Get(key)
}

func (c *natsHeaderCarrier) Set(key, val string) {
	if c.Header == nil {
		c.Header = make(nats.Header)
	}
	c.Header.Set(key, val)
}

func (c *natsHeaderCarrier) Keys() []string {
	if c.Header == nil {
		return nil
	}
	keys := make([]string, 0, len(c.Header))
	for k := range c.Header {
		keys = append(keys, k)
	}
	return keys
}

// NATSPublisher publishes events as JSON on a NATS subject, carrying the
// trace context in message headers.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	owned   bool
}

// DialNATS connects to url and returns a publisher that closes the
// connection on Close.
func DialNATS(url, subject string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("autodiag"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := NewNATSPublisher(nc, subject)
	p.owned = true
	return p, nil
}

// NewNATSPublisher wraps an existing connection.
func NewNATSPublisher(nc *nats.Conn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{nc: nc, subject: subject}
}

// Publish serializes the event and publishes it.
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
	}
	otel.GetTextMapPropagator().Inject(ctx, (*natsHeaderCarrier)(msg))
	if err := p.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close drains the connection if the publisher opened it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.nc.Drain()
}

// Subscribe calls handler for every event on subject. Malformed messages are
// dropped.
func Subscribe(nc *nats.Conn, subject string, handler func(context.Context, Event)) (*nats.Subscription, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	return nc.Subscribe(subject, func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			return
		}
		ctx := otel.GetTextMapPropagator().Extract(context.Background(), (*natsHeaderCarrier)(msg))
		handler(ctx, ev)
	})
}
