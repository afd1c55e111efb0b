package eventlog

import (
	"context"
	"fmt"
	"time"

	"socialmesh/internal/config"
	"socialmesh/internal/middleware"
	"socialmesh/internal/models"

	"github.com/gocql/gocql"
)

// Store appends and reads post events. It shares one gocql session, which is
// safe for concurrent use.
type Store struct {
	session  *gocql.Session
	keyspace string
	now      func() time.Time
	seq      *sequence
}

// Connect opens a session against the configured contact points and creates
// the keyspace and table when they are missing.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	cluster := gocql.NewCluster(cfg.ContactPoints()...)
	cluster.Consistency = gocql.One
	if cfg.CassandraConnectTimeout > 0 {
		cluster.ConnectTimeout = cfg.CassandraConnectTimeout
		cluster.Timeout = cfg.CassandraConnectTimeout
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cannot initialize cassandra: %w", err)
	}

	s := NewStore(session, cfg.CassandraKeyspace)
	if err := s.EnsureSchema(ctx, cfg.CassandraReplicationFactor); err != nil {
		session.Close()
		return nil, err
	}

	middleware.Logger.Info("Cassandra connected successfully", "keyspace", cfg.CassandraKeyspace)
	return s, nil
}

// NewStore wraps an existing session. Keyspace must already be a valid identifier.
func NewStore(session *gocql.Session, keyspace string) *Store {
	return &Store{
		session:  session,
		keyspace: keyspace,
		now:      time.Now,
		seq:      newSequence(),
	}
}

// EnsureSchema creates the keyspace and event table if absent. It is idempotent.
func (s *Store) EnsureSchema(ctx context.Context, replicationFactor int) error {
	if err := s.session.Query(createKeyspaceCQL(s.keyspace, replicationFactor)).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create keyspace %s: %w", s.keyspace, err)
	}
	if err := s.session.Query(createTableCQL(s.keyspace)).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("create table %s.%s: %w", s.keyspace, tableName, err)
	}
	return nil
}

// InsertEvent appends one event. A zero eventTime means now. The stored time
// is truncated to milliseconds; events sharing a millisecond read back
// latest insert first.
func (s *Store) InsertEvent(ctx context.Context, postID string, eventType models.EventType, value int, eventTime time.Time) error {
	if !eventType.Valid() {
		return fmt.Errorf("insert event: unknown event type %q", eventType)
	}
	if eventTime.IsZero() {
		eventTime = s.now()
	}
	eventTime = eventTime.UTC().Truncate(time.Millisecond)

	return s.session.Query(insertCQL(s.keyspace),
		postID, eventTime, s.seq.Next(), string(eventType), value,
	).WithContext(ctx).Exec()
}

// EventsForPost returns up to limit events for postID, newest first. A
// non-positive limit selects DefaultLimit.
func (s *Store) EventsForPost(ctx context.Context, postID string, limit int) ([]models.PostEvent, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	iter := s.session.Query(selectCQL(s.keyspace), postID, limit).WithContext(ctx).Iter()

	events := make([]models.PostEvent, 0, limit)
	var (
		pid       string
		eventTime time.Time
		eventType string
		value     int
	)
	for iter.Scan(&pid, &eventTime, &eventType, &value) {
		events = append(events, models.PostEvent{
			PostID:    pid,
			EventTime: eventTime.UTC(),
			EventType: models.EventType(eventType),
			Value:     value,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("read events for post %s: %w", postID, err)
	}
	return events, nil
}

// Ping runs a trivial query against the cluster.
func (s *Store) Ping(ctx context.Context) error {
	return s.session.Query(`SELECT release_version FROM system.local`).WithContext(ctx).Exec()
}

// Close releases the session.
func (s *Store) Close() {
	s.session.Close()
}
