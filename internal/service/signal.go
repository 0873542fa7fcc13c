package service

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const eventsChannel = "ryglfg:events"

// SignalService bridges dispatched events onto a redis pubsub channel
// feeding the realtime websocket stream.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, payload []byte) error {
	return s.rdb.Publish(ctx, eventsChannel, payload).Err()
}

// Realtime forwards published events to out until ctx is cancelled.
func (s *SignalService) Realtime(ctx context.Context, out chan<- []byte) {
	pubsub := s.rdb.Subscribe(ctx, eventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}
