// Package reportstore publishes generated comparison reports to S3.
package reportstore

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/bcompare-mcp/bcompare-go/internal/domain"
)

// PutObjectAPI is the slice of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads report files under a key prefix in one bucket.
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New resolves AWS credentials per s and returns a publisher for s.Bucket.
func New(ctx context.Context, s Settings) (*S3Publisher, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("reportstore: bucket is required")
	}
	awsCfg, err := loadAWSConfig(ctx, s)
	if err != nil {
		return nil, err
	}
	return NewWithClient(s3.NewFromConfig(awsCfg), s.Bucket, s.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client PutObjectAPI, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key a local report file is stored under.
func (p *S3Publisher) Key(localPath string) string {
	return path.Join(p.prefix, filepath.Base(localPath))
}

// Publish uploads the report at localPath and returns its s3:// URL.
func (p *S3Publisher) Publish(ctx context.Context, localPath string, rt domain.ReportType) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("reportstore: open report: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("reportstore: stat report: %w", err)
	}

	key := p.Key(localPath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String(contentType(rt)),
		Metadata: map[string]string{
			"report-type": string(rt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("reportstore: put s3://%s/%s: %w", p.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.bucket, strings.TrimPrefix(key, "/")), nil
}

func contentType(rt domain.ReportType) string {
	switch rt {
	case domain.ReportHTML:
		return "text/html; charset=utf-8"
	case domain.ReportXML:
		return "application/xml"
	case domain.ReportCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}
