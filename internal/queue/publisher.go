package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"

    "github.com/iliyamo/activity-tracker/internal/logger"
)

// Publisher sends domain events to RabbitMQ.  Each publish opens its own
// connection; event volume is a few messages per user action.  A Publisher
// with an empty URL drops events silently.
type Publisher struct {
    url string
    log *logger.Logger
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *logger.Logger) *Publisher {
    if log == nil {
        log = logger.NewNop()
    }
    return &Publisher{url: url, log: log}
}

// Enabled reports whether events are actually sent.
func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

// PublishActivitiesSubmitted sends ev to the actividades.enviadas queue.
func (p *Publisher) PublishActivitiesSubmitted(ctx context.Context, ev ActivitiesSubmittedEvent) error {
    return p.publish(ctx, ActivitiesSubmittedQueue, ev)
}

// PublishCommentCreated sends ev to the comentarios.creados queue.
func (p *Publisher) PublishCommentCreated(ctx context.Context, ev CommentCreatedEvent) error {
    return p.publish(ctx, CommentCreatedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queueName string, event any) error {
    if !p.Enabled() {
        return nil
    }
    body, err := json.Marshal(event)
    if err != nil {
        p.log.Error("rabbitmq: marshal event failed", zap.String("queue", queueName), zap.Error(err))
        return err
    }

    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Warn("rabbitmq: dial failed", zap.Error(err))
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Warn("rabbitmq: channel open failed", zap.Error(err))
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        p.log.Warn("rabbitmq: queue declare failed", zap.String("queue", queueName), zap.Error(err))
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
        p.log.Warn("rabbitmq: publish failed", zap.String("queue", queueName), zap.Error(err))
        return err
    }
    return nil
}
