package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

// NewGroup builds the consumer group for the payment callback topic. Offsets
// start at the oldest retained message so callbacks sent while the service
// was down are still reconciled; replays are harmless.
func NewGroup(brokers []string, groupID string) (sarama.ConsumerGroup, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.ClientID = "gstore-api"
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewConsumerGroup(brokers, groupID, cfg)
}
