// Package notify publishes generation events on NATS so downstream consumers
// can react to new audio without polling the history endpoint.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"
)

// GenerationCompletedEvent announces one finished synthesis.
type GenerationCompletedEvent struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	TextPreview string `json:"text_preview"`
	VoiceID     string `json:"voice_id,omitempty"`
	SizeBytes   int    `json:"size_bytes"`
	CompletedAt string `json:"completed_at"`
}

// Notifier publishes generation events on a fixed subject.
type Notifier struct {
	conn    *nats.Conn
	subject string
	log     *logger.Logger
}

// New creates a notifier publishing on the given subject.
func New(conn *nats.Conn, subject string, log *logger.Logger) *Notifier {
	return &Notifier{
		conn:    conn,
		subject: subject,
		log:     log,
	}
}

// GenerationCompleted publishes the event for one finished generation.
func (n *Notifier) GenerationCompleted(id, filename, preview, voiceID string, sizeBytes int) error {
	event := GenerationCompletedEvent{
		ID:          id,
		Filename:    filename,
		TextPreview: preview,
		VoiceID:     voiceID,
		SizeBytes:   sizeBytes,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal generation event: %w", err)
	}

	err = n.conn.Publish(n.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish generation event on %s: %w", n.subject, err)
	}

	n.log.Info("Published generation event for %s on %s", filename, n.subject)

	return nil
}
