// Package eventstreamutils constructs eventstream publishers from
// configuration.
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/eventstream"
	"github.com/voxgateco/voxgate/pkg/eventstream/kafka"
	"github.com/voxgateco/voxgate/pkg/eventstream/nop"
)

type NewPublisherOpts struct {
	// ProviderType selects the backend: kafka or nop.
	ProviderType string

	// Brokers is the broker list for the kafka provider.
	Brokers []string

	// Topic is the topic for the kafka provider.
	Topic string

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	switch o.ProviderType {
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: o.Brokers,
			Topic:   o.Topic,
		}, o.Logger)
	case "nop", "":
		return nop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported eventstream provider: %s", o.ProviderType)
	}
}
