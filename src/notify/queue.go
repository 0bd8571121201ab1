package notify

import (
	"artbook/src/config"
	"artbook/src/lib"
	"context"
	"encoding/json"
	"fmt"
)

// Publisher puts one message on a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue, key string, body []byte) error
}

type KafkaPublisher struct{}

func (KafkaPublisher) Publish(ctx context.Context, queue, key string, body []byte) error {
	return lib.KafkaProduceMessage(ctx, queue, key, body)
}

type SQSPublisher struct{}

func (SQSPublisher) Publish(ctx context.Context, queue, _ string, body []byte) error {
	return lib.SQSProduceMessage(ctx, queue, string(body))
}

// SNSPublisher treats the queue name as a topic ARN.
type SNSPublisher struct{}

func (SNSPublisher) Publish(ctx context.Context, topicArn, key string, body []byte) error {
	return lib.SNSPublishMessage(ctx, topicArn, key, string(body))
}

// QueueDispatcher hands templates to the confirmations queue. Mail is
// rendered and sent by the queue consumer.
type QueueDispatcher struct {
	queue     string
	publisher Publisher
}

func NewQueueDispatcher(queue string, p Publisher) *QueueDispatcher {
	return &QueueDispatcher{queue: queue, publisher: p}
}

// QueueDispatcherFromConfig uses Kafka locally and SQS everywhere else.
func QueueDispatcherFromConfig(cfg *config.Config) *QueueDispatcher {
	var p Publisher = SQSPublisher{}
	if cfg.IsLocal() {
		p = KafkaPublisher{}
	}
	return NewQueueDispatcher(cfg.WithSuffix(cfg.ConfirmationsQueue), p)
}

func (q *QueueDispatcher) Send(ctx context.Context, userID string, t Template) error {
	t.UserID = userID
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := q.publisher.Publish(ctx, q.queue, userID, body); err != nil {
		return fmt.Errorf("error sending message to queue: %w", err)
	}
	return nil
}
