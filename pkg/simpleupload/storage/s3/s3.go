// Package s3 provides the AWS SDK v2 implementation of the provider client
// factory. Presigned URLs are computed locally by the SDK's SigV4 signer; no
// request is made to the provider.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tendant/simple-upload/pkg/simpleupload"
)

// Config options for the S3 presign factory
type Config struct {
	// AnonymousFallback presigns unsigned URLs when a client carries no
	// explicit key pair, instead of falling back to the SDK default
	// credential chain. Use for publicly-writable buckets.
	AnonymousFallback bool
}

// Factory builds presign clients over the AWS SDK v2 S3 client. SigV4 is the
// SDK's default signing scheme, so no extra signing configuration is needed.
type Factory struct {
	config Config
}

// New creates a new S3 presign client factory
func New(config Config) *Factory {
	return &Factory{config: config}
}

// NewPresignClient builds a presign client bound to the given endpoint,
// region, and identity.
func (f *Factory) NewPresignClient(ctx context.Context, cfg simpleupload.ClientConfig) (simpleupload.PresignClient, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.Credentials.HasKeys() {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKey,
				cfg.Credentials.SecretKey,
				cfg.Credentials.SessionToken,
			)))
	} else if f.config.AnonymousFallback {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)

	return &presignClient{presigner: s3.NewPresignClient(client)}, nil
}

// presignClient adapts s3.PresignClient to the provider client interface.
type presignClient struct {
	presigner *s3.PresignClient
}

func (c *presignClient) PresignURL(ctx context.Context, op simpleupload.Operation, in simpleupload.PresignInput) (string, error) {
	expires := in.Expires
	if expires <= 0 {
		expires = time.Hour
	}
	withExpiry := func(opts *s3.PresignOptions) {
		opts.Expires = expires
	}

	switch op {
	case simpleupload.OperationGet, "":
		input := &s3.GetObjectInput{
			Bucket: aws.String(in.Bucket),
			Key:    aws.String(in.Key),
		}
		if in.DownloadFilename != "" {
			input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=\"%s\"", in.DownloadFilename))
		}
		result, err := c.presigner.PresignGetObject(ctx, input, withExpiry)
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned download URL: %w", err)
		}
		return result.URL, nil

	case simpleupload.OperationPut:
		input := &s3.PutObjectInput{
			Bucket: aws.String(in.Bucket),
			Key:    aws.String(in.Key),
		}
		if in.ContentType != "" {
			input.ContentType = aws.String(in.ContentType)
		}
		result, err := c.presigner.PresignPutObject(ctx, input, withExpiry)
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned upload URL: %w", err)
		}
		return result.URL, nil

	case simpleupload.OperationHead:
		result, err := c.presigner.PresignHeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(in.Bucket),
			Key:    aws.String(in.Key),
		}, withExpiry)
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned head URL: %w", err)
		}
		return result.URL, nil

	case simpleupload.OperationDelete:
		result, err := c.presigner.PresignDeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(in.Bucket),
			Key:    aws.String(in.Key),
		}, withExpiry)
		if err != nil {
			return "", fmt.Errorf("failed to generate presigned delete URL: %w", err)
		}
		return result.URL, nil

	default:
		return "", fmt.Errorf("unsupported presign operation %q", op)
	}
}
