package notification

import (
	"context"
	"errors"
	"fmt"
	"log"

	"teamtodo-backend/internal/notification/domain"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// Eventarc Pub/Sub messages carry CloudEvent attributes with a ce- prefix.
// The data content type is mapped to content-type.
const (
	ceTypeAttribute        = "ce-type"
	contentTypeAttribute   = "content-type"
	ceContentTypeAttribute = "ce-datacontenttype"
)

// EventHandler processes one Firestore document event
type EventHandler interface {
	HandleEvent(ctx context.Context, eventType, contentType string, data []byte) (domain.Outcome, error)
}

// Listener receives task document events from a Pub/Sub subscription
type Listener struct {
	pubsubClient *pubsub.Client
	handler      EventHandler
	subName      string
}

func NewListener(ctx context.Context, projectID, subName, credentialsFile string, handler EventHandler) (*Listener, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	return &Listener{
		pubsubClient: client,
		handler:      handler,
		subName:      subName,
	}, nil
}

// Start blocks receiving messages until ctx is cancelled. Every message is
// acked whatever the outcome, so a failed push is never redelivered.
func (l *Listener) Start(ctx context.Context) {
	sub := l.pubsubClient.Subscription(l.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[EventIntake] Error checking subscription existence: %v", err)
		return
	}
	if !exists {
		log.Printf("[EventIntake] Subscription %s does not exist, intake disabled", l.subName)
		return
	}

	log.Printf("[EventIntake] Listening for task events on subscription: %s", l.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		defer msg.Ack()
		l.handleMessage(ctx, msg.ID, msg.Attributes[ceTypeAttribute], messageContentType(msg.Attributes), msg.Data)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("[EventIntake] Error receiving messages: %v", err)
	}
}

func messageContentType(attrs map[string]string) string {
	if ct := attrs[contentTypeAttribute]; ct != "" {
		return ct
	}
	return attrs[ceContentTypeAttribute]
}

func (l *Listener) handleMessage(ctx context.Context, id, eventType, contentType string, data []byte) {
	outcome, err := l.handler.HandleEvent(ctx, eventType, contentType, data)
	if err != nil {
		log.Printf("[EventIntake] Dropping undecodable message %s: %v", id, err)
		return
	}
	log.Printf("[EventIntake] Message %s (%s) handled: %s", id, eventType, outcome)
}

func (l *Listener) Close() error {
	return l.pubsubClient.Close()
}
