package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/losbaristas/cafeteria-catalog/internal/model"
)

const (
	receiveBatchSize   = 10
	receiveWaitSeconds = 20

	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 30 * time.Second
)

var (
	// ErrUnknownAction is returned for messages whose action the catalog never emits.
	// Such messages stay on the queue so the redrive policy can move them aside.
	ErrUnknownAction = errors.New("unknown product action")

	// ErrInvalidMessage is returned for messages that cannot describe a product event.
	ErrInvalidMessage = errors.New("invalid product message")
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// HandlerFunc reacts to one product event.
type HandlerFunc func(ctx context.Context, msg ProductMessage) error

// Consumer receives product events and dispatches them by event type.
// A message is deleted only after its handler succeeds.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handlers map[string]HandlerFunc
	backoff  backoff.BackOff
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
func NewConsumer(client ConsumerAPI, queueURL string) *Consumer {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = retryInitialInterval
	retry.MaxInterval = retryMaxInterval
	retry.MaxElapsedTime = 0
	retry.Reset()

	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handlers: make(map[string]HandlerFunc),
		backoff:  retry,
	}
}

// Handle registers fn for eventType, one of model.EventTypeProduct*.
// Handlers must be registered before Start.
func (c *Consumer) Handle(eventType string, fn HandlerFunc) {
	c.handlers[eventType] = fn
}

// Start consumes the queue until ctx is cancelled. Receive failures are
// retried with exponential backoff.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		if ctx.Err() != nil {
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		}

		err := c.receiveMessages(ctx)
		if err == nil {
			c.backoff.Reset()
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		wait := c.backoff.NextBackOff()
		if wait == backoff.Stop {
			wait = retryMaxInterval
		}
		slog.Error("Error receiving messages",
			slog.Duration("retry_in", wait),
			slog.Any("err", err))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   receiveBatchSize,
		WaitTimeSeconds:       receiveWaitSeconds,
		MessageAttributeNames: []string{actionAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Warn("Leaving message on the queue",
				slog.String("message_id", aws.ToString(message.MessageId)),
				slog.Any("err", err))
			continue
		}

		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

// processMessage resolves the event type from the action attribute, falling
// back to the body for messages sent without attributes.
func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}

	var productMsg ProductMessage
	if err := json.Unmarshal([]byte(*message.Body), &productMsg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	action := productMsg.Action
	if attr, ok := message.MessageAttributes[actionAttribute]; ok {
		action = aws.ToString(attr.StringValue)
		if productMsg.Action != "" && productMsg.Action != action {
			return fmt.Errorf("%w: attribute %q does not match body %q", ErrInvalidMessage, action, productMsg.Action)
		}
	}

	eventType, ok := model.ProductEventType(action)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if productMsg.ProductID <= 0 {
		return fmt.Errorf("%w: product_id %d", ErrInvalidMessage, productMsg.ProductID)
	}
	productMsg.Action = action

	handler, ok := c.handlers[eventType]
	if !ok {
		slog.Debug("No handler for product event", slog.String("event_type", eventType))
		return nil
	}
	if err := handler(ctx, productMsg); err != nil {
		return fmt.Errorf("%s handler for product %d: %w", eventType, productMsg.ProductID, err)
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
