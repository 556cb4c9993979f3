// Package export writes derive-cycle audit reports to S3 so the learning
// history survives outside the database and can feed offline review.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/adpilot/internal/domain"
)

// DeriveReport is one derive cycle's audit record.
type DeriveReport struct {
	AccountID    string            `json:"account_id"`
	RanAt        time.Time         `json:"ran_at"`
	NewLearnings []domain.Learning `json:"new_learnings"`
}

// Exporter uploads JSON reports to an S3 bucket.
type Exporter struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an exporter with default AWS credential resolution.
func New(ctx context.Context, region, bucket, prefix string) (*Exporter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Exporter{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// WriteDeriveReport uploads one derive-cycle report, keyed by account and
// timestamp so reports never overwrite each other.
func (e *Exporter) WriteDeriveReport(ctx context.Context, report DeriveReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	key := fmt.Sprintf("%s/derive/%s/%s.json",
		e.prefix, report.AccountID, report.RanAt.UTC().Format("2006-01-02T15-04-05"))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put report %s: %w", key, err)
	}
	return nil
}
