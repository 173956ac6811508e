package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// kafkaWriter is the subset of kafka.Writer the broadcaster uses; tests swap
// in a recording fake.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaBroadcastConfig configures the broadcast producer.
type KafkaBroadcastConfig struct {
	// Brokers is the list of broker addresses (host:port).
	Brokers []string

	// Topic receives every broadcast envelope.
	Topic string

	// MaxAttempts bounds retries on transient produce errors. Defaults to 3.
	MaxAttempts int

	// WriteTimeout is the per-attempt bound. Defaults to 5s.
	WriteTimeout time.Duration
}

// broadcastEnvelope is the published message value. The key is the subject,
// so notifications about the same artifact land on the same partition.
type broadcastEnvelope struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Ts      time.Time `json:"ts"`
}

// KafkaBroadcast publishes workflow notifications to a shared topic that
// downstream consumers (mail bridge, dashboards) subscribe to.
type KafkaBroadcast struct {
	writer      kafkaWriter
	maxAttempts int
	timeout     time.Duration
}

func NewKafkaBroadcast(cfg KafkaBroadcastConfig) (*KafkaBroadcast, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		Async:        false,
	})
	return &KafkaBroadcast{
		writer:      w,
		maxAttempts: cfg.MaxAttempts,
		timeout:     cfg.WriteTimeout,
	}, nil
}

func (k *KafkaBroadcast) Chat(ctx context.Context, webhookURL, text string) error {
	return nil
}

// Broadcast produces one envelope, retrying transient failures with a short
// exponential backoff.
func (k *KafkaBroadcast) Broadcast(ctx context.Context, subject, message string) error {
	value, err := json.Marshal(broadcastEnvelope{
		ID:      uuid.NewString(),
		Subject: subject,
		Message: message,
		Ts:      time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka marshal envelope: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(subject),
		Value: value,
		Time:  time.Now().UTC(),
	}

	var lastErr error
	backoff := 100 * time.Millisecond
	for attempt := 1; attempt <= k.maxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, k.timeout)
		err := k.writer.WriteMessages(attemptCtx, msg)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < k.maxAttempts {
			time.Sleep(backoff)
			if backoff < time.Second {
				backoff *= 2
			}
		}
	}
	return fmt.Errorf("kafka broadcast failed after %d attempts: %w", k.maxAttempts, lastErr)
}

func (k *KafkaBroadcast) Close() error {
	if k == nil || k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
