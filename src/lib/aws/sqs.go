package aws

import (
	"artbook/src/lib"
	"artbook/src/types"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

type SQSConsumer struct {
	Name    string
	handler types.Handler
}

func NewSQSConsumer(queue string, handler types.Handler) *SQSConsumer {
	return &SQSConsumer{Name: queue, handler: handler}
}

// Listen long-polls the queue until ctx is done. Each message is handed to
// the handler and then deleted.
func (s *SQSConsumer) Listen(ctx context.Context) {
	go func() {
		client, err := lib.AWSGetSQSClient()
		if err != nil {
			zap.S().Errorf("[sqs] %s: no client: %s", s.Name, err.Error())
			return
		}
		qurl, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
			QueueName: aws.String(s.Name),
		})
		if err != nil {
			zap.S().Errorf("Failed to retrieve queue URL for %s: %s", s.Name, err.Error())
			return
		}
		zap.S().Infof("%s: Listening for messages...", s.Name)
		messages := make(chan sqstypes.Message, 10)
		go func(chn chan<- sqstypes.Message) {
			defer close(chn)
			for ctx.Err() == nil {
				output, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
					QueueUrl:            qurl.QueueUrl,
					WaitTimeSeconds:     20,
					MaxNumberOfMessages: 10,
				})
				if err != nil {
					if ctx.Err() == nil {
						zap.S().Errorf("[SQS] Error receiving messages: %s", err.Error())
					}
					return
				}
				for _, m := range output.Messages {
					chn <- m
				}
			}
		}(messages)

		for m := range messages {
			s.handler(strings.Clone(aws.ToString(m.Body)))
			lib.SQSDeleteMessage(client, qurl.QueueUrl, &m)
		}
	}()
}
