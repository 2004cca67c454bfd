package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypeUploaded = "video.uploaded"
	TypeReplaced = "video.replaced"
	TypeDeleted  = "video.deleted"
)

// VideoEvent is the lifecycle envelope published after a committed change.
type VideoEvent struct {
	Type    string    `json:"type"`
	VideoID string    `json:"video_id"`
	OwnerID string    `json:"owner_id"`
	Size    int64     `json:"size,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher writes lifecycle events to Kafka. A nil Publisher is valid and
// publishes nothing, so call sites need no feature check.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, ev VideoEvent) error {
	if p == nil || p.writer == nil {
		return nil
	}
	b, _ := json.Marshal(ev)
	msg := kafka.Message{Key: []byte(ev.OwnerID), Value: b, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
