package eventlog

import (
	"context"
	"os"
	"testing"
	"time"

	"socialmesh/internal/config"
	"socialmesh/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCassandra connects to CASSANDRA_TEST_HOSTS and skips when it is unset
// or unreachable.
func setupCassandra(t *testing.T) *Store {
	t.Helper()
	hosts := os.Getenv("CASSANDRA_TEST_HOSTS")
	if hosts == "" {
		t.Skip("CASSANDRA_TEST_HOSTS not set")
	}

	cfg := &config.Config{
		CassandraContactPoints:     hosts,
		CassandraKeyspace:          "socialmesh_test",
		CassandraReplicationFactor: 1,
		CassandraConnectTimeout:    5 * time.Second,
	}
	s, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Skipf("cassandra unavailable: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStore_EventsNewestFirst(t *testing.T) {
	s := setupCassandra(t)
	ctx := context.Background()
	postID := "post-" + uuid.NewString()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeCreate, 1, base))
	require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeLike, 1, base.Add(time.Second)))
	require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeLike, 1, base.Add(2*time.Second)))

	events, err := s.EventsForPost(ctx, postID, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, models.EventTypeLike, events[0].EventType)
	assert.Equal(t, models.EventTypeLike, events[1].EventType)
	assert.Equal(t, models.EventTypeCreate, events[2].EventType)
	assert.True(t, events[0].EventTime.After(events[1].EventTime))
}

func TestStore_SameMillisecondEventsReadLatestFirst(t *testing.T) {
	s := setupCassandra(t)
	ctx := context.Background()
	postID := "post-" + uuid.NewString()

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeCreate, 1, at))
	require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeLike, 5, at))

	events, err := s.EventsForPost(ctx, postID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeLike, events[0].EventType)
	assert.Equal(t, 5, events[0].Value)
	assert.Equal(t, models.EventTypeCreate, events[1].EventType)
	assert.Equal(t, 1, events[1].Value)
	assert.True(t, events[0].EventTime.Equal(events[1].EventTime))
}

func TestStore_EventsForPost_LimitAndUnknown(t *testing.T) {
	s := setupCassandra(t)
	ctx := context.Background()
	postID := "post-" + uuid.NewString()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.InsertEvent(ctx, postID, models.EventTypeLike, 1, time.Time{}))
	}

	events, err := s.EventsForPost(ctx, postID, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = s.EventsForPost(ctx, "missing-"+uuid.NewString(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_InsertEvent_RejectsUnknownType(t *testing.T) {
	s := &Store{keyspace: "ks", now: time.Now}
	err := s.InsertEvent(context.Background(), "p1", models.EventType("share"), 1, time.Time{})
	assert.Error(t, err)
}
