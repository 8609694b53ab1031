package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Object encodings
const (
	FormatJSONL   = "jsonl"
	FormatMsgpack = "msgpack"
)

// S3Config configures the object store sink. Endpoint is set for
// S3-compatible stores (R2, MinIO) and switches to path-style addressing.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Format          string
}

// objectUploader is the part of *manager.Uploader the sink uses
type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink writes each run's batch as one object
type S3Sink struct {
	uploader objectUploader
	bucket   string
	prefix   string
	format   string
	log      zerolog.Logger
}

// NewS3Sink builds an S3 client from cfg
func NewS3Sink(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Sink(manager.NewUploader(client), cfg, log), nil
}

func newS3Sink(uploader objectUploader, cfg S3Config, log zerolog.Logger) *S3Sink {
	format := cfg.Format
	if format == "" {
		format = FormatJSONL
	}
	return &S3Sink{
		uploader: uploader,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		format:   format,
		log:      log.With().Str("component", "s3_sink").Str("bucket", cfg.Bucket).Logger(),
	}
}

// Name returns the sink kind
func (s *S3Sink) Name() string {
	return "s3"
}

// Insert uploads records under <prefix>/<date>/<run-id>.<ext>
func (s *S3Sink) Insert(ctx context.Context, records []domain.RiskRecord) error {
	if len(records) == 0 {
		return nil
	}

	body, contentType, err := encodeRecords(records, s.format)
	if err != nil {
		return err
	}

	key := objectKey(s.prefix, records[0].Date, RunIDFromContext(ctx), s.format)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info().Str("key", key).Int("rows", len(records)).Int("bytes", len(body)).Msg("Records uploaded")
	return nil
}

func objectKey(prefix, date, runID, format string) string {
	if runID == "" {
		runID = "run"
	}
	return path.Join(prefix, date, runID+"."+format)
}

// encodeRecords serializes records as JSON lines or a msgpack array
func encodeRecords(records []domain.RiskRecord, format string) ([]byte, string, error) {
	switch format {
	case FormatJSONL:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				return nil, "", fmt.Errorf("failed to encode record %s: %w", r.Symbol, err)
			}
		}
		return buf.Bytes(), "application/x-ndjson", nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(records)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode records: %w", err)
		}
		return data, "application/msgpack", nil
	default:
		return nil, "", fmt.Errorf("unsupported object format %q", format)
	}
}
