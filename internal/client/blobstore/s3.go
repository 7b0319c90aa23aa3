// Package blobstore offloads encrypted payloads that exceed the document
// store's embedding ceiling to an S3-compatible bucket. The artifact record
// then carries an s3:// reference instead of an embedded data URI.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/authenta/authenta/internal/client/config"
)

const refScheme = "s3://"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Client is the payload-offload surface the orchestrator uses.
type Client interface {
	// Put stores data and returns an opaque s3:// reference.
	Put(ctx context.Context, data []byte) (string, error)
	// Get fetches the payload behind a reference produced by Put.
	Get(ctx context.Context, ref string) ([]byte, error)
}

// IsRef reports whether ref points at offloaded blob storage rather than
// an embedded data URI.
func IsRef(ref string) bool { return strings.HasPrefix(ref, refScheme) }

// S3Client implements Client with presigned PUT/GET requests, so the
// bucket credentials never travel further than URL signing.
type S3Client struct {
	cfg  *config.Config
	http *http.Client
}

// NewS3Client builds a client from the offload settings in cfg.
func NewS3Client(cfg *config.Config) *S3Client {
	return &S3Client{cfg: cfg, http: &http.Client{Timeout: cfg.RequestTimeout}}
}

func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("payloads/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (c *S3Client) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.cfg.S3AccessKey,
			c.cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.cfg.S3BaseEndpoint)
		}
	})

	return newS3PresignClient(client), nil
}

func (c *S3Client) Put(ctx context.Context, data []byte) (string, error) {
	pc, err := c.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := c.cfg.S3Bucket
	key := randomStorageKey()

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	if err := c.upload(ctx, req.URL, data); err != nil {
		return "", err
	}

	return refScheme + bucket + "/" + key, nil
}

func (c *S3Client) Get(ctx context.Context, ref string) ([]byte, error) {
	bucket, key, err := splitRef(ref)
	if err != nil {
		return nil, err
	}

	pc, err := c.presignClient(ctx)
	if err != nil {
		return nil, err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, err
	}

	return c.download(ctx, req.URL)
}

func (c *S3Client) upload(ctx context.Context, url string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("blob upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

func (c *S3Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blob download failed: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func splitRef(ref string) (bucket, key string, err error) {
	if !IsRef(ref) {
		return "", "", fmt.Errorf("not a blob reference: %q", ref)
	}
	rest := strings.TrimPrefix(ref, refScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed blob reference: %q", ref)
	}
	return bucket, key, nil
}
