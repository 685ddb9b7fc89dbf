package notify

import (
	"bytes"
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/trailback/backend/pkg/models"
)

func TestNewWithoutRedis(t *testing.T) {
	p := New(nil, zerolog.Nop())
	assert.IsType(t, Nop{}, p)
	p.Publish(context.Background(), models.Event{Type: "friend-request"})
}

func TestRedisPublisherLogsFailures(t *testing.T) {
	// Nothing listens on this address; Publish must swallow the error.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()

	buf := new(bytes.Buffer)
	p := NewRedisPublisher(rdb, zerolog.New(buf))
	p.Publish(context.Background(), models.Event{
		Operation: models.OperationRequest,
		Type:      "friend-request",
		UserID:    "bob",
	})

	assert.Contains(t, buf.String(), "publishing event")
	assert.Contains(t, buf.String(), `"user_id":"bob"`)
}
