package lib

import (
	"artbook/src/config"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

var (
	awsOnce sync.Once
	awsCfg  *aws.Config
	awsErr  error
)

// AWSConfig loads the default SDK configuration once. When AWS_IAM_ROLE_ARN
// is set, the role is assumed and its temporary credentials are used.
func AWSConfig() (*aws.Config, error) {
	awsOnce.Do(func() {
		awsCfg, awsErr = loadAWSConfig(context.Background())
	})
	return awsCfg, awsErr
}

func loadAWSConfig(ctx context.Context) (*aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		zap.S().Errorf("[aws] could not load default config: %s", err.Error())
		return nil, err
	}
	role := config.Get().AWSRoleArn
	if role == "" {
		return &cfg, nil
	}
	output, err := sts.NewFromConfig(cfg).AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(role),
		RoleSessionName: aws.String("artbook-api"),
	})
	if err != nil {
		zap.S().Errorf("[aws] could not assume role %s: %s", role, err.Error())
		return nil, err
	}
	creds := output.Credentials
	cfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithCredentialsProvider(
		credentials.NewStaticCredentialsProvider(*creds.AccessKeyId, *creds.SecretAccessKey, *creds.SessionToken),
	))
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func AWSGetS3Client() (*s3.Client, error) {
	cfg, err := AWSConfig()
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(*cfg), nil
}

func AWSGetSQSClient() (*sqs.Client, error) {
	cfg, err := AWSConfig()
	if err != nil {
		return nil, err
	}
	return sqs.NewFromConfig(*cfg), nil
}

func AWSGetSESClient() (*ses.Client, error) {
	cfg, err := AWSConfig()
	if err != nil {
		return nil, err
	}
	return ses.NewFromConfig(*cfg), nil
}

func AWSGetSNSClient() (*sns.Client, error) {
	cfg, err := AWSConfig()
	if err != nil {
		return nil, err
	}
	return sns.NewFromConfig(*cfg), nil
}

func AWSGetSecretsManagerClient() (*secretsmanager.Client, error) {
	cfg, err := AWSConfig()
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(*cfg), nil
}

// SNSPublishMessage publishes body to a topic. FIFO topics group messages
// by key.
func SNSPublishMessage(ctx context.Context, topicArn, key, body string) error {
	client, err := AWSGetSNSClient()
	if err != nil {
		return err
	}
	input := &sns.PublishInput{
		TopicArn: aws.String(topicArn),
		Message:  aws.String(body),
	}
	if strings.HasSuffix(topicArn, ".fifo") {
		input.MessageGroupId = aws.String(key)
	}
	out, err := client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("could not publish to %s: %w", topicArn, err)
	}
	zap.S().Debugf("[sns] published %s to %s", aws.ToString(out.MessageId), topicArn)
	return nil
}

// SQSProduceMessage sends body to the named queue.
func SQSProduceMessage(ctx context.Context, queue string, body string) error {
	client, err := AWSGetSQSClient()
	if err != nil {
		return err
	}
	qurl, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queue)})
	if err != nil {
		return fmt.Errorf("could not resolve queue %s: %w", queue, err)
	}
	out, err := client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		return err
	}
	zap.S().Debugf("[sqs] sent %s to %s", aws.ToString(out.MessageId), queue)
	return nil
}

func SQSDeleteMessage(c *sqs.Client, qurl *string, msg *sqstypes.Message) {
	_, err := c.DeleteMessage(context.Background(), &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		zap.S().Errorf("[sqs] could not delete message %s: %s", aws.ToString(msg.MessageId), err.Error())
	}
}
