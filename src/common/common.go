package common

import (
	"artbook/src/config"
	"artbook/src/lib"
	awslib "artbook/src/lib/aws"
	"context"

	"go.uber.org/zap"
)

// ConfirmationsConsumer starts consuming the confirmations queue: Kafka
// when running locally, SQS elsewhere.
func ConfirmationsConsumer(ctx context.Context, cfg *config.Config, c *Confirmations) {
	queue := cfg.WithSuffix(cfg.ConfirmationsQueue)
	if cfg.IsLocal() {
		if err := lib.KafkaConsumer(ctx, "confirmations", queue, c.Handle); err != nil {
			zap.S().Errorf("[confirmations] could not start kafka consumer: %s", err.Error())
		}
		return
	}
	awslib.NewSQSConsumer(queue, c.Handle).Listen(ctx)
}
