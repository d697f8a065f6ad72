package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHub_PublishReachesClients(t *testing.T) {
	hub := NewEventHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(client)

	hub.Publish(map[string]string{"type": "assistant_reply", "conversation_id": "conv-1"})

	select {
	case data := <-client.SendChan:
		var event map[string]string
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, "assistant_reply", event["type"])
		assert.Equal(t, "conv-1", event["conversation_id"])
	case <-time.After(time.Second):
		t.Fatal("no event delivered within 1s")
	}
}

func TestEventHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewEventHub(nil)
	go hub.Run()
	defer hub.Stop()

	client := &MockClient{SendChan: make(chan []byte, 8)}
	hub.Register(client)
	hub.Unregister(client)

	// The send channel is closed on unregister.
	select {
	case _, open := <-client.SendChan:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed within 1s")
	}
}
