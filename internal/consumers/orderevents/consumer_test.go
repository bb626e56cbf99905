package orderevents

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/nilecommerce/admin-service/pkg/logger"
)

type recordedMetric struct {
	metricType string
	at         time.Time
	delta      float64
}

type recordedReason struct {
	reason string
	at     time.Time
	delta  float64
}

// stubDashboard records what the consumer writes and can fail on demand.
type stubDashboard struct {
	metrics   []recordedMetric
	reasons   []recordedReason
	metricErr error
}

func (s *stubDashboard) RecordMetric(ctx context.Context, metricType string, at time.Time, delta float64) error {
	if s.metricErr != nil {
		return s.metricErr
	}
	s.metrics = append(s.metrics, recordedMetric{metricType, at, delta})
	return nil
}

func (s *stubDashboard) RecordFailureReason(ctx context.Context, reason string, at time.Time, delta float64) error {
	s.reasons = append(s.reasons, recordedReason{reason, at, delta})
	return nil
}

// stubAcknowledger records ack/nack outcomes on a delivery.
type stubAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (s *stubAcknowledger) Ack(tag uint64, multiple bool) error {
	s.acked = true
	return nil
}

func (s *stubAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	s.nacked = true
	s.requeue = requeue
	return nil
}

func (s *stubAcknowledger) Reject(tag uint64, requeue bool) error {
	s.nacked = true
	s.requeue = requeue
	return nil
}

type stubSource struct {
	deliveries chan amqp.Delivery
	consumeErr error
}

func (s *stubSource) Consume(consumerTag string) (<-chan amqp.Delivery, error) {
	if s.consumeErr != nil {
		return nil, s.consumeErr
	}
	return s.deliveries, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func buildConsumer(t *testing.T, dash *stubDashboard) *Consumer {
	t.Helper()
	consumer, err := New(&stubSource{}, dash, "order-events", testLogger(), nil)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}
	return consumer
}

func delivery(ack *stubAcknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
}

func TestHandleSuccessEventIncrementsOrders(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(),
		delivery(ack, `{"status":"SUCCESS","createdAt":"2025-03-10T10:00:00Z"}`))

	if !ack.acked || ack.nacked {
		t.Fatalf("expected ack, got acked=%v nacked=%v", ack.acked, ack.nacked)
	}
	if len(dash.metrics) != 1 {
		t.Fatalf("expected one metric write, got %d", len(dash.metrics))
	}
	got := dash.metrics[0]
	if got.metricType != "orders" || got.delta != 1 {
		t.Fatalf("unexpected metric: %+v", got)
	}
	if !got.at.Equal(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected event time: %v", got.at)
	}
	if len(dash.reasons) != 0 {
		t.Fatalf("success event must not record a reason, got %+v", dash.reasons)
	}
}

func TestHandleFailureEventRecordsReasonToo(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(),
		delivery(ack, `{"status":"FAILURE","reason":"insufficient_funds","createdAt":"2025-03-10T10:00:00Z"}`))

	if !ack.acked {
		t.Fatal("expected ack after successful processing")
	}
	if len(dash.metrics) != 1 || dash.metrics[0].metricType != "failed_orders" {
		t.Fatalf("expected failed_orders metric, got %+v", dash.metrics)
	}
	if len(dash.reasons) != 1 || dash.reasons[0].reason != "insufficient_funds" {
		t.Fatalf("expected reason write, got %+v", dash.reasons)
	}
}

func TestHandleFailureEventWithoutReason(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(),
		delivery(ack, `{"status":"CANCELLED","createdAt":"2025-03-10T10:00:00Z"}`))

	if !ack.acked {
		t.Fatal("expected ack")
	}
	if len(dash.metrics) != 1 || dash.metrics[0].metricType != "failed_orders" {
		t.Fatalf("expected failed_orders metric, got %+v", dash.metrics)
	}
	if len(dash.reasons) != 0 {
		t.Fatalf("no reason present, none should be recorded: %+v", dash.reasons)
	}
}

func TestHandleSuccessStatusIsCaseInsensitive(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(),
		delivery(ack, `{"status":"success","createdAt":"2025-03-10T10:00:00Z"}`))

	if len(dash.metrics) != 1 || dash.metrics[0].metricType != "orders" {
		t.Fatalf("expected orders metric, got %+v", dash.metrics)
	}
}

func TestHandleMalformedPayloadDroppedWithoutRequeue(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(), delivery(ack, `{not json`))

	if ack.acked {
		t.Fatal("malformed payload must not be acked")
	}
	if !ack.nacked || ack.requeue {
		t.Fatalf("malformed payload should be dropped: nacked=%v requeue=%v", ack.nacked, ack.requeue)
	}
	if len(dash.metrics) != 0 {
		t.Fatalf("nothing should be recorded, got %+v", dash.metrics)
	}
}

func TestHandleMissingFieldsDroppedWithoutRequeue(t *testing.T) {
	dash := &stubDashboard{}
	consumer := buildConsumer(t, dash)

	for _, body := range []string{
		`{"createdAt":"2025-03-10T10:00:00Z"}`,
		`{"status":"SUCCESS"}`,
	} {
		ack := &stubAcknowledger{}
		consumer.handle(context.Background(), delivery(ack, body))
		if !ack.nacked || ack.requeue {
			t.Fatalf("payload %s should be dropped: nacked=%v requeue=%v", body, ack.nacked, ack.requeue)
		}
	}
}

func TestHandleRecorderFailureRequeues(t *testing.T) {
	dash := &stubDashboard{metricErr: errors.New("database down")}
	consumer := buildConsumer(t, dash)
	ack := &stubAcknowledger{}

	consumer.handle(context.Background(),
		delivery(ack, `{"status":"SUCCESS","createdAt":"2025-03-10T10:00:00Z"}`))

	if ack.acked {
		t.Fatal("failed processing must not be acked")
	}
	if !ack.nacked || !ack.requeue {
		t.Fatalf("transient failure should requeue: nacked=%v requeue=%v", ack.nacked, ack.requeue)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	dash := &stubDashboard{}
	source := &stubSource{deliveries: make(chan amqp.Delivery)}
	consumer, err := New(source, dash, "order-events", testLogger(), nil)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestRunStopsWhenDeliveryChannelCloses(t *testing.T) {
	dash := &stubDashboard{}
	deliveries := make(chan amqp.Delivery)
	source := &stubSource{deliveries: deliveries}
	consumer, err := New(source, dash, "order-events", testLogger(), nil)
	if err != nil {
		t.Fatalf("build consumer: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- consumer.Run(context.Background()) }()

	close(deliveries)
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error when the channel closes")
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after channel close")
	}
}
