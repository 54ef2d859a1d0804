package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies []string
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, string(body))
	return &s3.PutObjectOutput{}, nil
}

type fakeSender struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSender) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

type fakeResolver struct {
	asked string
	err   error
}

func (f *fakeResolver) GetQueueUrl(_ context.Context, in *sqs.GetQueueUrlInput, _ ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error) {
	f.asked = aws.ToString(in.QueueName)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.GetQueueUrlOutput{QueueUrl: aws.String("https://sqs.local/000000000000/" + f.asked)}, nil
}

func testNotification() *Notification {
	return NewNotification("Reunião", "Sala 2", CategoryMural, time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC))
}

func TestObjectKey(t *testing.T) {
	got := ObjectKey(CollectionPath("esf-equipe-10"), "doc-1")
	want := "artifacts/esf-equipe-10/public/data/notifications/doc-1.json"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := ObjectKey("c/", "x"); got != "c/x.json" {
		t.Errorf("trailing slash not trimmed: %q", got)
	}
}

func TestS3Store_Add(t *testing.T) {
	putter := &fakePutter{}
	s := &S3Store{client: putter, bucket: "esf"}

	if err := s.Add(context.Background(), "col", "doc-1", testNotification()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(putter.inputs) != 1 {
		t.Fatalf("expected 1 put, got %d", len(putter.inputs))
	}
	in := putter.inputs[0]
	if aws.ToString(in.Bucket) != "esf" || aws.ToString(in.Key) != "col/doc-1.json" {
		t.Errorf("unexpected location %s/%s", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToString(in.ContentType) != "application/json" {
		t.Errorf("unexpected content type %q", aws.ToString(in.ContentType))
	}
	var doc Notification
	if err := json.Unmarshal([]byte(putter.bodies[0]), &doc); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if doc.Title != "Reunião" || doc.Type != CategoryMural {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestS3Store_AddError(t *testing.T) {
	s := &S3Store{client: &fakePutter{err: errors.New("access denied")}, bucket: "esf"}
	err := s.Add(context.Background(), "col", "doc-1", testNotification())
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	if _, err := NewS3Store(aws.Config{Region: "sa-east-1"}, ""); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestSQSStore_Add(t *testing.T) {
	sender := &fakeSender{}
	s := &SQSStore{client: sender, queueURL: "https://sqs.local/q"}

	if err := s.Add(context.Background(), "col", "doc-1", testNotification()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	in := sender.inputs[0]
	if aws.ToString(in.QueueUrl) != "https://sqs.local/q" {
		t.Errorf("unexpected queue %q", aws.ToString(in.QueueUrl))
	}
	if got := aws.ToString(in.MessageAttributes[CollectionHeader].StringValue); got != "col" {
		t.Errorf("collection attribute = %q", got)
	}
	if got := aws.ToString(in.MessageAttributes["id"].StringValue); got != "doc-1" {
		t.Errorf("id attribute = %q", got)
	}
	if !strings.Contains(aws.ToString(in.MessageBody), `"type":"mural"`) {
		t.Errorf("unexpected body %s", aws.ToString(in.MessageBody))
	}

	s.client = &fakeSender{err: errors.New("throttled")}
	if err := s.Add(context.Background(), "col", "doc-2", testNotification()); err == nil {
		t.Error("expected send error")
	}
}

func TestResolveQueueURL(t *testing.T) {
	ctx := context.Background()

	r := &fakeResolver{}
	url, err := resolveQueueURL(ctx, r, "https://sqs.sa-east-1.amazonaws.com/1/notifications")
	if err != nil || r.asked != "" || !strings.HasSuffix(url, "/notifications") {
		t.Errorf("URL should pass through untouched: %q %v asked=%q", url, err, r.asked)
	}

	url, err = resolveQueueURL(ctx, r, "notifications")
	if err != nil || r.asked != "notifications" || url != "https://sqs.local/000000000000/notifications" {
		t.Errorf("name lookup failed: %q %v", url, err)
	}

	if _, err := resolveQueueURL(ctx, r, ""); err == nil {
		t.Error("expected error for empty queue")
	}
	if _, err := resolveQueueURL(ctx, &fakeResolver{err: errors.New("no such queue")}, "missing"); err == nil {
		t.Error("expected lookup error")
	}
}
