package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
)

const (
	actionAttribute    = "action"
	eventTypeAttribute = "event_type"
)

// ProductMessage is the body of a product event on the queue. It carries the
// product as it was right after the write.
type ProductMessage struct {
	Action    string `json:"action"`
	ProductID int64  `json:"product_id"`
	Nombre    string `json:"nombre"`
	Precio    int64  `json:"precio"`
	Imagen    string `json:"imagen"`
}

// PublisherAPI is the slice of the SQS client Publisher needs.
type PublisherAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends product events to one queue.
type Publisher struct {
	client   PublisherAPI
	queueURL string
}

func NewPublisher(client PublisherAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

// PublishProductMessage sends msg with its action and event type as message
// attributes. Actions the consumer would reject are never sent.
func (p *Publisher) PublishProductMessage(ctx context.Context, msg ProductMessage) error {
	eventType, ok := model.ProductEventType(msg.Action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal product %d message: %w", msg.ProductID, err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			actionAttribute:    stringAttribute(msg.Action),
			eventTypeAttribute: stringAttribute(eventType),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send %s for product %d: %w", eventType, msg.ProductID, err)
	}

	slog.Debug("Product event sent",
		slog.String("event_type", eventType),
		slog.Int64("product_id", msg.ProductID),
		slog.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

func stringAttribute(value string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(value),
	}
}
