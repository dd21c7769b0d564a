package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends domain events to RabbitMQ.  Errors are logged and
// returned so callers can ignore them without interrupting the request
// flow: losing a notification must never fail an enrollment.
type Publisher struct {
    url string
}

// NewPublisher returns a Publisher that dials url for each publish.  A
// fresh connection per event keeps the publisher free of broken-channel
// state after broker restarts; event volume here is human-paced.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishEnrollment publishes an EnrollmentEvent to the enrollment queue.
func (p *Publisher) PublishEnrollment(ctx context.Context, ev EnrollmentEvent) error {
    return p.publish(ctx, EnrollmentQueue, ev)
}

// PublishSlotCancelled publishes a SlotCancelledEvent to the cancelled queue.
func (p *Publisher) PublishSlotCancelled(ctx context.Context, ev SlotCancelledEvent) error {
    return p.publish(ctx, CancelledQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event interface{}) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent declare; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(event)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
