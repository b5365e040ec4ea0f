package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer used by the notifier.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Notifier 将报名事件发布到 Kafka，供邮件服务消费
// 实现 biz.Notifier，未配置 broker 时只记录日志
type Notifier struct {
	writer messageWriter
	topic  string
	logger *log.Helper
}

// NewNotifier 创建通知器，cleanup 时刷新并关闭 Kafka writer
func NewNotifier(c *conf.Notify, logger log.Logger) (*Notifier, func()) {
	helper := log.NewHelper(logger)

	if c == nil || len(c.Brokers) == 0 {
		helper.Warn("no Kafka brokers configured, enrollment notifications are only logged")
		return &Notifier{logger: helper}, func() {}
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				helper.Errorw("msg", "failed to publish enrollment notifications",
					"count", len(messages),
					"error", err)
			}
		},
	}

	n := &Notifier{writer: w, topic: c.Topic, logger: helper}
	return n, func() {
		helper.Info("closing Kafka writer")
		if err := w.Close(); err != nil {
			helper.Errorf("failed to close Kafka writer: %v", err)
		}
	}
}

// PublishEnrollmentEvent sends the event keyed by enrollment id, so events of one
// enrollment stay ordered on a partition.
func (n *Notifier) PublishEnrollmentEvent(ctx context.Context, event *model.EnrollmentEvent) error {
	if n.writer == nil {
		n.logger.Infow("msg", "enrollment notification (not published)",
			"type", "notify",
			"event", event.Type,
			"enrollment_id", event.EnrollmentID,
			"user_id", event.UserID)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EnrollmentID),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(event.Type)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish enrollment event: %w", err)
	}
	return nil
}
