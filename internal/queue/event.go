// Package queue defines the message payloads exchanged over RabbitMQ and
// the background consumer that turns them into member notifications.
package queue

// Queue names.  Durable queues, default exchange, routing key = queue name.
const (
    EnrollmentQueue = "training.enrollment"
    CancelledQueue  = "training.cancelled"
)

// Enrollment actions carried in EnrollmentEvent.Action.
const (
    ActionEnrolled   = "ENROLLED"   // seat taken on the basic roster
    ActionWaitlisted = "WAITLISTED" // queued, roster was full
    ActionPromoted   = "PROMOTED"   // moved from waitlist into a freed seat
    ActionWithdrawn  = "WITHDRAWN"  // left the roster or the waitlist
)

// EnrollmentEvent is published after every successful enrollment mutation.
// It carries enough for downstream consumers (notification mailer, audit
// log) to act without querying the primary database.
type EnrollmentEvent struct {
    SlotID        uint64 `json:"slot_id"`
    ParticipantID uint64 `json:"participant_id"`
    Action        string `json:"action"`
    HallNumber    int    `json:"hall_number"`
    Date          string `json:"date"`       // "YYYY-MM-DD"
    StartTime     string `json:"start_time"` // "HH:MM"
    EndTime       string `json:"end_time"`   // "HH:MM"
    OccurredAt    string `json:"occurred_at"`
}

// SlotCancelledEvent is published when a trainer removes a slot, so every
// enrolled and waitlisted participant can be notified.
type SlotCancelledEvent struct {
    SlotID         uint64   `json:"slot_id"`
    HallNumber     int      `json:"hall_number"`
    Date           string   `json:"date"`
    StartTime      string   `json:"start_time"`
    EndTime        string   `json:"end_time"`
    ParticipantIDs []uint64 `json:"participant_ids"`
    WaitlistIDs    []uint64 `json:"waitlist_ids"`
    CancelledAt    string   `json:"cancelled_at"`
}
