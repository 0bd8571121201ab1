package lib

import (
	"artbook/src/config"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// SecretsReader is the part of the Secrets Manager client LoadSecrets needs.
type SecretsReader interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// LoadSecrets reads the JSON secret named by cfg.SecretsID and overlays its
// keys onto cfg.
func LoadSecrets(ctx context.Context, client SecretsReader, cfg *config.Config) error {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(cfg.SecretsID),
	})
	if err != nil {
		return fmt.Errorf("could not read secret %s: %w", cfg.SecretsID, err)
	}
	n, err := cfg.ApplySecrets(aws.ToString(out.SecretString))
	if err != nil {
		return fmt.Errorf("secret %s: %w", cfg.SecretsID, err)
	}
	zap.S().Infof("[secrets] applied %d values from %s", n, cfg.SecretsID)
	return nil
}
