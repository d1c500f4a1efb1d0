package messaging

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Handler processes one raw message. Errors are logged and the next message is read.
type Handler func(ctx context.Context, msg []byte) error

// Consume subscribes to channel and feeds every message to handler until ctx is done.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler) error {
	msgChan, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(ctx, msg); err != nil {
				log.Error().Err(err).Str("channel", channel).Msg("failed to handle message")
				continue
			}
		}
	}()

	return nil
}
