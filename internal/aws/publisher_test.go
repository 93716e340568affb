package aws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func TestPublishOrderPlaced(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "https://sqs.example/orders")

	ev := OrderPlacedEvent{OrderID: "o-1", UserID: "user123", TotalAmount: 1999.98}
	if err := p.PublishOrderPlaced(context.Background(), ev); err != nil {
		t.Fatalf("PublishOrderPlaced: %v", err)
	}

	if len(mock.inputs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.inputs))
	}
	in := mock.inputs[0]
	if *in.QueueUrl != "https://sqs.example/orders" {
		t.Fatalf("queue url mismatch: %s", *in.QueueUrl)
	}

	var got OrderPlacedEvent
	if err := json.Unmarshal([]byte(*in.MessageBody), &got); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if got != ev {
		t.Fatalf("body mismatch: %+v", got)
	}
	if attr, ok := in.MessageAttributes["order_id"]; !ok || *attr.StringValue != "o-1" {
		t.Fatalf("order_id attribute missing or wrong: %+v", in.MessageAttributes)
	}
}

func TestPublishOrderPlaced_DisabledWithoutQueue(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "")

	if err := p.PublishOrderPlaced(context.Background(), OrderPlacedEvent{OrderID: "o-1"}); err != nil {
		t.Fatalf("disabled publisher must be a no-op, got %v", err)
	}
	if len(mock.inputs) != 0 {
		t.Fatalf("disabled publisher must not send, sent %d", len(mock.inputs))
	}
}
