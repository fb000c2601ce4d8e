package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/pkg/ptr"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testAppointment() *domain.Appointment {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.Appointment{
		ID:         42,
		LocationID: 1,
		ServiceID:  2,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Status:     domain.StatusBooked,
		EmployeeID: ptr.Ptr[int64](7),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(w, "appointments", time.Second)

	e := NewEvent(TypeBooked, testAppointment(), time.Now())
	require.NoError(t, p.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, e.ID, headers["event_id"])
	assert.Equal(t, string(TypeBooked), headers["event_type"])

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, int64(42), decoded.AppointmentID)
	assert.Equal(t, "booked", decoded.Status)
	require.NotNil(t, decoded.EmployeeID)
	assert.Equal(t, int64(7), *decoded.EmployeeID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := NewKafkaPublisherWithWriter(w, "appointments", 0)

	err := p.Publish(context.Background(), NewEvent(TypeCancelled, testAppointment(), time.Now()))
	assert.ErrorIs(t, err, ErrPublish)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	a := testAppointment()
	first := NewEvent(TypeBooked, a, time.Now())
	second := NewEvent(TypeBooked, a, time.Now())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
