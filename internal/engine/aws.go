package engine

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"dbobjects/internal/config"
)

// LoadAWSConfig loads the SDK configuration from the default chain. When an
// endpoint override is configured (local emulators), static dummy credentials
// are used so no real AWS identity is required.
func LoadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if cfg.RedshiftDataEndpoint != "" || cfg.SecretsManagerEndpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewRedshiftDataAPI builds the Data API client, honoring the endpoint override.
func NewRedshiftDataAPI(awsCfg aws.Config, cfg *config.Config) *redshiftdata.Client {
	return redshiftdata.NewFromConfig(awsCfg, func(o *redshiftdata.Options) {
		if cfg.RedshiftDataEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.RedshiftDataEndpoint)
		}
	})
}

// NewSecretsManagerAPI builds the Secrets Manager client, honoring the endpoint override.
func NewSecretsManagerAPI(awsCfg aws.Config, cfg *config.Config) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
		if cfg.SecretsManagerEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SecretsManagerEndpoint)
		}
	})
}
