package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/config"
	"greeting-card-go/internal/model"
)

// objectAPI is the subset of the S3 client used by S3Store
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store keeps the collection as one JSON object in an S3 compatible bucket
type S3Store struct {
	client objectAPI
	bucket string
	key    string
}

// NewS3Store builds an S3 client from cfg. A custom endpoint switches to
// path-style addressing so MinIO works out of the box.
func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, wrap("init", fmt.Errorf("failed to load AWS config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	s := newS3Store(client, cfg.Bucket, cfg.Key)
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func newS3Store(client objectAPI, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key}
}

// init writes an empty collection when the object does not exist yet
func (s *S3Store) init(ctx context.Context) error {
	out, err := s.get(ctx)
	if err == nil {
		out.Body.Close()
		return nil
	}
	if !isNoSuchKey(err) {
		return wrap("init", err)
	}

	if err := s.SaveAll(ctx, []model.Greeting{}); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": s.key}).Info("Created greetings object")
	return nil
}

func (s *S3Store) get(ctx context.Context) (*s3.GetObjectOutput, error) {
	return s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
}

func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	return errors.As(err, &noKey)
}

// LoadAll fetches and decodes the collection object. A missing object reads
// as empty; the next SaveAll recreates it.
func (s *S3Store) LoadAll(ctx context.Context) ([]model.Greeting, error) {
	out, err := s.get(ctx)
	if err != nil {
		if isNoSuchKey(err) {
			return []model.Greeting{}, nil
		}
		return nil, wrap("load", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, wrap("load", err)
	}

	var greetings []model.Greeting
	if err := json.Unmarshal(data, &greetings); err != nil {
		return nil, wrap("load", fmt.Errorf("failed to decode s3://%s/%s: %w", s.bucket, s.key, err))
	}
	if greetings == nil {
		greetings = []model.Greeting{}
	}
	return greetings, nil
}

// SaveAll uploads the collection, replacing the previous object
func (s *S3Store) SaveAll(ctx context.Context, greetings []model.Greeting) error {
	if greetings == nil {
		greetings = []model.Greeting{}
	}
	data, err := json.MarshalIndent(greetings, "", "  ")
	if err != nil {
		return wrap("save", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	return wrap("save", err)
}

// Ping checks that the bucket is reachable
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return wrap("ping", err)
}

func (s *S3Store) Close() error {
	return nil
}
