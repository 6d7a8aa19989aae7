package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/logging"
)

// RunLogFile is the file, under the log directory, one line per run is
// appended to.
const RunLogFile = "etl_runs.log"

// StartRunLogConsumer connects to the broker at url, declares the
// etl.load.completed queue and appends every event to dir/etl_runs.log.
// It reconnects with exponential backoff and returns only when ctx is
// cancelled. Undecodable messages are rejected without requeue so a bad
// payload cannot spin the loop.
func StartRunLogConsumer(ctx context.Context, url, dir string) error {
	log := logging.With().Str("component", "run-log-consumer").Logger()
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, dir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		logging.Warn().Err(err).Msg("run-log-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(LoadCompletedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(LoadCompletedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := HandleMessage(dir, d.Body); err != nil {
				logging.Error().Err(err).Msg("run-log-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and appends its log line to
// dir/etl_runs.log, creating dir if needed.
func HandleMessage(dir string, body []byte) error {
	var ev LoadCompletedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RunID == "" {
		return errors.New("event without run_id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, RunLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single newline-terminated line.
func FormatLine(ev LoadCompletedEvent) string {
	status := "PASSED"
	if !ev.Passed {
		status = "FAILED"
	}
	errs := "[]"
	if len(ev.Errors) > 0 {
		errs = fmt.Sprintf("[%s]", strings.Join(ev.Errors, "; "))
	}
	return fmt.Sprintf("[%s] ETL run %s | run_id=%s | started=%s | users=%d | content=%d | sessions=%d | orphan_users=%d | orphan_content=%d | errors=%s\n",
		ev.FinishedAt, status, ev.RunID, ev.StartedAt, ev.Users, ev.Content, ev.Sessions,
		ev.OrphanUserRefs, ev.OrphanContentRefs, errs)
}
