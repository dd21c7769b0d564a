package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ, declares the enrollment
// and cancellation queues, and consumes both.  Each message is rendered as
// a notification line in logs/notifications.log; actual mail delivery is a
// separate downstream concern.  The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; failed
// messages are rejected without requeue to avoid tight redelivery loops.
func StartNotificationConsumer(url string) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("notify-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{EnrollmentQueue, CancelledQueue} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    enrollMsgs, err := ch.Consume(EnrollmentQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", EnrollmentQueue, err)
    }
    cancelMsgs, err := ch.Consume(CancelledQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("consume %s: %w", CancelledQueue, err)
    }

    for {
        select {
        case d, ok := <-enrollMsgs:
            if !ok {
                return errors.New("enrollment deliveries channel closed")
            }
            ackOrReject(d, handleEnrollment(d.Body))
        case d, ok := <-cancelMsgs:
            if !ok {
                return errors.New("cancellation deliveries channel closed")
            }
            ackOrReject(d, handleCancellation(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("notify-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false)
        return
    }
    _ = d.Ack(false)
}

func handleEnrollment(body []byte) error {
    var ev EnrollmentEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] %s | slot=%d | participant=%d | hall=%d | %s %s-%s\n",
        ev.OccurredAt, ev.Action, ev.SlotID, ev.ParticipantID, ev.HallNumber,
        ev.Date, ev.StartTime, ev.EndTime)
    return appendNotification(line)
}

func handleCancellation(body []byte) error {
    var ev SlotCancelledEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    all := append(append([]uint64(nil), ev.ParticipantIDs...), ev.WaitlistIDs...)
    ids := make([]string, 0, len(all))
    for _, id := range all {
        ids = append(ids, fmt.Sprint(id))
    }
    line := fmt.Sprintf("[%s] CANCELLED | slot=%d | hall=%d | %s %s-%s | notify=[%s]\n",
        ev.CancelledAt, ev.SlotID, ev.HallNumber,
        ev.Date, ev.StartTime, ev.EndTime, strings.Join(ids, ","))
    return appendNotification(line)
}

func appendNotification(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "notifications.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
