package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrObjectNotFound is returned by GetObject when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Options configures a Client.
type Options struct {
	Endpoint  string // Empty uses the AWS default endpoint resolution
	Region    string
	AccessKey string // Empty uses the default credential chain
	SecretKey string
	PathStyle bool
}

// Client wraps the S3 client.
type Client struct {
	s3     *s3.Client
	region string
}

// NewClient creates a new S3 client.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})

	return &Client{s3: client, region: opts.Region}, nil
}

// EnsureBucket creates the record bucket on first use. A bucket that
// already exists and belongs to the caller is accepted as is.
func (c *Client) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil || exists {
		return err
	}

	_, err = c.s3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if errorCode(err) == codeAlreadyOwned {
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", bucket, err)
	}
	return nil
}

// BucketExists reports whether bucket is reachable with the configured
// credentials.
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	switch {
	case err == nil:
		return true, nil
	case errorCode(err) == codeNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking bucket %s: %w", bucket, err)
	}
}

// ListObjects returns every key under prefix, across all result pages.
func (c *Client) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	pages := s3.NewListObjectsV2Paginator(c.s3, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// PutObject writes a JSON document to key, replacing any previous one.
func (c *Client) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("writing %s/%s: %w", bucket, key, err)
	}
	return nil
}

// GetObject reads the document at key. A missing key yields an error
// wrapping ErrObjectNotFound.
func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if errorCode(err) == codeNotFound {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// DeleteObject removes key. Removing a missing key succeeds.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil && errorCode(err) != codeNotFound {
		return fmt.Errorf("deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

const (
	codeNone         = ""
	codeNotFound     = "NotFound"
	codeAlreadyOwned = "BucketAlreadyOwnedByYou"
	codeOther        = "Other"
)

// errorCode folds the S3 error codes the client reacts to into a few
// canonical ones. The typed SDK errors and the generic errors returned by
// S3-compatible services both satisfy smithy.APIError.
func errorCode(err error) string {
	if err == nil {
		return codeNone
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return codeOther
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket", "NoSuchKey", "404":
		return codeNotFound
	case "BucketAlreadyOwnedByYou":
		return codeAlreadyOwned
	default:
		return codeOther
	}
}
