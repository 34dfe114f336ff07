// Package awscfg builds the aws.Config shared by the DynamoDB, S3 and SNS clients.
package awscfg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/nitrmart-api/internal/config"
)

// Load resolves region and credentials. Static keys from the environment take
// precedence over the default provider chain (LocalStack uses dummy ones).
func Load(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return LoadRegion(ctx, cfg, cfg.AWSRegion)
}

// LoadRegion is Load with the region overridden, for services such as SNS that
// may live in a different region than the data plane.
func LoadRegion(ctx context.Context, cfg *config.Config, region string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}
