package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/artelar/shop/internal/notification"
	"github.com/artelar/shop/internal/notification/publisher"
	"github.com/segmentio/kafka-go"
)

// messageReader is the subset of kafka.Reader the consumer needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer delivers queued notification emails. A mailer failure is
// logged and the message dropped: notification is best-effort and must
// never block the stream behind one bad send.
type Consumer struct {
	mailer notification.Mailer
	reader messageReader
}

func NewConsumer(mailer notification.Mailer, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    publisher.Topic,
		GroupID:  "notifier",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{mailer, reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	err := c.reader.Close()
	if err != nil {
		log.Printf("error closing kafka reader: %v", err)
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Printf("error reading message: %v", err)
		return
	}

	var email notification.Email
	if errUnmarshal := json.Unmarshal(m.Value, &email); errUnmarshal != nil {
		log.Printf("error parsing notification payload: %v", errUnmarshal)
		return
	}

	if email.To == "" || email.Template == "" {
		log.Printf("notification missing recipient or template, skipping")
		return
	}

	if errSend := c.mailer.Send(ctx, email); errSend != nil {
		log.Printf("failed to send %s email to %s: %v", email.Template, email.To, errSend)
	}
}
