package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bridgeCommon "github.com/CultureBridge/bridge-relayer/common"
	"github.com/CultureBridge/bridge-relayer/relayer/core"
	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/kafka-go"
)

const kafkaWriteTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaStuckNotifier publishes stuck transfers to an operator topic keyed by dedup key
type KafkaStuckNotifier struct {
	writer     messageWriter
	instanceID string
	logger     hclog.Logger
}

var _ core.StuckNotifier = (*KafkaStuckNotifier)(nil)

func NewKafkaStuckNotifier(
	config core.StuckNotifierConfig, instanceID string, logger hclog.Logger,
) (*KafkaStuckNotifier, error) {
	if len(config.KafkaBrokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}

	if config.KafkaTopic == "" {
		return nil, errors.New("kafka topic is required")
	}

	return newKafkaStuckNotifier(&kafka.Writer{
		Addr:                   kafka.TCP(config.KafkaBrokers...),
		Topic:                  config.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           kafkaWriteTimeout,
	}, instanceID, logger), nil
}

func newKafkaStuckNotifier(writer messageWriter, instanceID string, logger hclog.Logger) *KafkaStuckNotifier {
	return &KafkaStuckNotifier{
		writer:     writer,
		instanceID: instanceID,
		logger:     logger,
	}
}

func (n *KafkaStuckNotifier) NotifyStuck(ctx context.Context, state *bridgeCommon.TransferState) error {
	payload, err := json.Marshal(NewStuckTransferNotification(n.instanceID, state))
	if err != nil {
		return fmt.Errorf("failed to encode stuck notification: %w", err)
	}

	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(state.DedupKey),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to publish stuck notification for %s: %w", state.DedupKey, err)
	}

	n.logger.Debug("Stuck notification published", "key", state.DedupKey)

	return nil
}

func (n *KafkaStuckNotifier) Close() error {
	return n.writer.Close()
}
