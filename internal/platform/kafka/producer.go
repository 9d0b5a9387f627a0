// Package kafka publishes audit records with franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"auditlink/internal/platform/config"
	"auditlink/pkg/platform/strings"
)

// Producer writes keyed records to one topic and waits for all in-sync
// replicas to acknowledge each write.
type Producer struct {
	client *kgo.Client
	topic  string
}

func NewProducer(cfg config.KafkaConfig, opts ...kgo.Opt) (*Producer, error) {
	brokers := strings.DedupeAndTrim(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: cfg.Topic}, nil
}

// Produce writes one record synchronously.
func (p *Producer) Produce(ctx context.Context, key string, value []byte) error {
	rec := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, resp.Err)
	}
	return nil
}

// Ping checks broker connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Producer) Close() {
	p.client.Close()
}
