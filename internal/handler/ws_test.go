package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(userID string) *Client {
	return &Client{
		UserID: userID,
		Send:   make(chan []byte, 8),
		rooms:  make(map[string]bool),
	}
}

func drain(c *Client) [][]byte {
	out := [][]byte{}
	for {
		select {
		case msg := <-c.Send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub(zap.NewNop())
	a, b := newTestClient("a"), newTestClient("b")
	hub.register(a)
	hub.register(b)

	hub.Broadcast([]byte("ping"))

	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestHubRoomBroadcastOnlyReachesMembers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	member, outsider := newTestClient("a"), newTestClient("b")
	hub.register(member)
	hub.register(outsider)
	member.join("support")

	hub.BroadcastRoom("support", []byte("hello"))

	msgs := drain(member)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", string(msgs[0]))
	assert.Empty(t, drain(outsider))
}

func TestHubLeaveRoomStopsDelivery(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient("a")
	hub.register(c)

	c.join("support")
	c.leave("support")

	hub.BroadcastRoom("support", []byte("hello"))
	assert.Empty(t, drain(c))
}

func TestHubBroadcastRoomExceptSkipsSender(t *testing.T) {
	hub := NewHub(zap.NewNop())
	sender, peer := newTestClient("a"), newTestClient("b")
	hub.register(sender)
	hub.register(peer)
	sender.join("support")
	peer.join("support")

	hub.BroadcastRoomExcept("support", []byte("typing"), sender)

	assert.Empty(t, drain(sender))
	assert.Len(t, drain(peer), 1)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c := newTestClient("a")
	hub.register(c)
	hub.unregister(c)

	_, open := <-c.Send
	assert.False(t, open)

	// Double unregister must not panic on the closed channel.
	hub.unregister(c)
}
