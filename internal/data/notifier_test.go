package data

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"CourseLane/internal/conf"
	"CourseLane/internal/model"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testEvent() *model.EnrollmentEvent {
	return &model.EnrollmentEvent{
		Type:         model.NotificationEnrollmentApproved,
		EnrollmentID: "e1",
		UserID:       "u1",
		CourseID:     "c1",
		PackageType:  "BUNDLE",
		Status:       "APPROVED",
		OccurredAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNotifier_Publish(t *testing.T) {
	w := &fakeWriter{}
	n := &Notifier{writer: w, topic: "notify.enrollment", logger: log.NewHelper(log.DefaultLogger)}

	require.NoError(t, n.PublishEnrollmentEvent(context.Background(), testEvent()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "e1", string(msg.Key))
	assert.Equal(t, "enrollment.approved", string(msg.Headers[0].Value))

	var decoded model.EnrollmentEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "c1", decoded.CourseID)
	assert.Equal(t, "APPROVED", decoded.Status)
}

func TestNotifier_PublishError(t *testing.T) {
	n := &Notifier{writer: &fakeWriter{err: errors.New("broker down")}, logger: log.NewHelper(log.DefaultLogger)}

	err := n.PublishEnrollmentEvent(context.Background(), testEvent())
	assert.ErrorContains(t, err, "broker down")
}

func TestNewNotifier_NoBrokers(t *testing.T) {
	n, cleanup := NewNotifier(&conf.Notify{Topic: "notify.enrollment"}, log.DefaultLogger)
	defer cleanup()

	assert.Nil(t, n.writer)
	assert.NoError(t, n.PublishEnrollmentEvent(context.Background(), testEvent()))
}

func TestNewNotifier_WithBrokers(t *testing.T) {
	n, cleanup := NewNotifier(&conf.Notify{Brokers: []string{"127.0.0.1:9092"}, Topic: "notify.enrollment"}, log.DefaultLogger)
	defer cleanup()

	w, ok := n.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "notify.enrollment", w.Topic)
	assert.True(t, w.Async)
}
