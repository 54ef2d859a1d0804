package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// LoadAWSConfig reads credentials and region the usual SDK way. A non-empty
// endpoint points every client at it, e.g. a LocalStack container.
func LoadAWSConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg, nil
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes each document as a JSON object at <collection>/<id>.json.
type S3Store struct {
	client objectPutter
	bucket string
}

func NewS3Store(cfg aws.Config, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 store: no bucket configured")
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.BaseEndpoint != nil
	})
	return &S3Store{client: client, bucket: bucket}, nil
}

// ObjectKey is where a document lands inside the bucket.
func ObjectKey(collection, id string) string {
	return strings.TrimSuffix(collection, "/") + "/" + id + ".json"
}

func (s *S3Store) Add(ctx context.Context, collection, id string, n *Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectKey(collection, id)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put s3 object: %w", err)
	}
	return nil
}

func (s *S3Store) Close() error { return nil }

type messageSender interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, opts ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type queueResolver interface {
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, opts ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
}

// SQSStore enqueues each document for a downstream writer. The collection
// and id travel as message attributes.
type SQSStore struct {
	client   messageSender
	queueURL string
}

func NewSQSStore(ctx context.Context, cfg aws.Config, queue string) (*SQSStore, error) {
	client := sqs.NewFromConfig(cfg)
	url, err := resolveQueueURL(ctx, client, queue)
	if err != nil {
		return nil, err
	}
	return &SQSStore{client: client, queueURL: url}, nil
}

// resolveQueueURL accepts either a queue URL or a queue name.
func resolveQueueURL(ctx context.Context, r queueResolver, queue string) (string, error) {
	if queue == "" {
		return "", fmt.Errorf("sqs store: no queue configured")
	}
	if strings.HasPrefix(queue, "https://") || strings.HasPrefix(queue, "http://") {
		return queue, nil
	}
	out, err := r.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queue)})
	if err != nil {
		return "", fmt.Errorf("get sqs queue url for %q: %w", queue, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

func (s *SQSStore) Add(ctx context.Context, collection, id string, n *Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			CollectionHeader: {DataType: aws.String("String"), StringValue: aws.String(collection)},
			"id":             {DataType: aws.String("String"), StringValue: aws.String(id)},
		},
	})
	if err != nil {
		return fmt.Errorf("send sqs message: %w", err)
	}
	return nil
}

func (s *SQSStore) Close() error { return nil }
