// Package queue also contains the background consumer that listens to the
// event queues and appends one line per event to a log file per queue.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/activity-tracker/internal/logger"
)

// Consumer drains the event queues into <dir>/<queue>.log.
type Consumer struct {
    url string
    dir string
    log *logger.Logger
}

// NewConsumer builds a consumer writing under dir.
func NewConsumer(url, dir string, log *logger.Logger) *Consumer {
    if log == nil {
        log = logger.NewNop()
    }
    return &Consumer{url: url, dir: dir, log: log}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) when the broker is
// unavailable or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.Warn("event-consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.Warn("event-consumer: consume loop ended; reconnecting", zap.Error(err))
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

type delivery struct {
    queue string
    amqp.Delivery
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("event-consumer: set QoS failed", zap.Error(err))
    }

    merged := make(chan delivery)
    queues := []string{ActivitiesSubmittedQueue, CommentCreatedQueue}
    done := make(chan struct{})
    defer close(done)
    for _, q := range queues {
        if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", q, err)
        }
        msgs, err := ch.Consume(q, "", false, false, false, false, nil)
        if err != nil {
            return fmt.Errorf("queue consume %s: %w", q, err)
        }
        go func(q string, msgs <-chan amqp.Delivery) {
            for d := range msgs {
                select {
                case merged <- delivery{queue: q, Delivery: d}:
                case <-done:
                    return
                }
            }
        }(q, msgs)
    }

    closed := ch.NotifyClose(make(chan *amqp.Error, 1))
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case err := <-closed:
            if err != nil {
                return err
            }
            return errors.New("channel closed")
        case d := <-merged:
            if err := c.HandleMessage(d.queue, d.Body); err != nil {
                c.log.Error("event-consumer: handle message failed", zap.String("queue", d.queue), zap.Error(err))
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event body and appends a single line describing
// it to the queue's log file.
func (c *Consumer) HandleMessage(queueName string, body []byte) error {
    var line string
    switch queueName {
    case ActivitiesSubmittedQueue:
        var ev ActivitiesSubmittedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        ids := make([]string, len(ev.ActivityIDs))
        for i, id := range ev.ActivityIDs {
            ids[i] = fmt.Sprintf("%d", id)
        }
        line = fmt.Sprintf("[%s] Activities submitted | user_id=%d | supervisor_id=%d | hours=%.2f | ids=[%s]\n",
            ev.SubmittedAt, ev.UserID, ev.SupervisorID, ev.TotalHours, strings.Join(ids, ","))
    case CommentCreatedQueue:
        var ev CommentCreatedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        parent := "-"
        if ev.ParentID != nil {
            parent = fmt.Sprintf("%d", *ev.ParentID)
        }
        line = fmt.Sprintf("[%s] Comment created | comment_id=%d | activity_id=%d | owner_id=%d | author_id=%d | parent=%s\n",
            ev.CreatedAt, ev.CommentID, ev.ActivityID, ev.ActivityOwnerID, ev.AuthorID, parent)
    default:
        return fmt.Errorf("unknown queue %q", queueName)
    }

    if err := os.MkdirAll(c.dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.dir, err)
    }
    fpath := filepath.Join(c.dir, queueName+".log")
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
