package backup

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PubSubSink publishes each backup document to a Pub/Sub topic, for
// consumers that mirror the ledger elsewhere. It cannot be restored from.
type PubSubSink struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

var _ Sink = (*PubSubSink)(nil)

// NewPubSubSink connects to projectID and publishes to topicID.
func NewPubSubSink(ctx context.Context, projectID, topicID string, credentialsJSON []byte) (*PubSubSink, error) {
	if projectID == "" || topicID == "" {
		return nil, errors.New("backup: pubsub project and topic are required")
	}
	var opts []option.ClientOption
	if len(credentialsJSON) > 0 {
		opts = append(opts, option.WithCredentialsJSON(credentialsJSON))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("backup: pubsub client: %w", err)
	}
	return &PubSubSink{client: client, topic: client.Topic(topicID)}, nil
}

func (p *PubSubSink) Name() string { return "pubsub:" + p.topic.ID() }

func (p *PubSubSink) Put(ctx context.Context, key string, data []byte) error {
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"file": key},
	})
	_, err := res.Get(ctx)
	return err
}

// Close flushes pending messages and releases the client.
func (p *PubSubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
