package sub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis pub/sub channels shared by publishers and this subscriber. Going
// through redis keeps fan-out correct when more than one portal instance is
// running.
const (
	SensorDataChannel = "sensorData"
	ChatEventsChannel = "chatEvents"
)

// Broadcaster is the websocket hub surface the subscriber fans out to.
type Broadcaster interface {
	Broadcast(message []byte)
	BroadcastRoom(room string, message []byte)
}

// ChatEvent is the envelope chat publishers put on ChatEventsChannel.
type ChatEvent struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// EventSubscriber forwards redis events to connected websocket clients:
// sensor readings to everyone, chat messages to their room.
type EventSubscriber struct {
	rdb    *redis.Client
	hub    Broadcaster
	logger *zap.Logger
	pubsub *redis.PubSub
}

func NewEventSubscriber(rdb *redis.Client, hub Broadcaster, logger *zap.Logger) *EventSubscriber {
	return &EventSubscriber{rdb: rdb, hub: hub, logger: logger}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	s.pubsub = s.rdb.Subscribe(ctx, SensorDataChannel, ChatEventsChannel)

	// Wait for confirmation that the subscription is live before returning.
	if _, err := s.pubsub.Receive(ctx); err != nil {
		return err
	}

	go s.listen(ctx)
	return nil
}

func (s *EventSubscriber) listen(ctx context.Context) {
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.dispatch(msg)
		}
	}
}

func (s *EventSubscriber) dispatch(msg *redis.Message) {
	switch msg.Channel {
	case SensorDataChannel:
		out, err := json.Marshal(wsMessage{Type: "sensorData", Data: json.RawMessage(msg.Payload)})
		if err != nil {
			return
		}
		s.hub.Broadcast(out)

	case ChatEventsChannel:
		var ev ChatEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			s.logger.Warn("dropping malformed chat event", zap.Error(err))
			return
		}
		out, err := json.Marshal(wsMessage{Type: "newMessage", Data: ev.Message})
		if err != nil {
			return
		}
		s.hub.BroadcastRoom(ev.Room, out)
	}
}
