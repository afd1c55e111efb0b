// Package eventlog stores the append-only post event stream in Cassandra.
package eventlog

import "fmt"

const tableName = "post_events"

// DefaultLimit caps a single EventsForPost read.
const DefaultLimit = 50

func createKeyspaceCQL(keyspace string, replicationFactor int) string {
	return fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = { 'class': 'SimpleStrategy', 'replication_factor': '%d' }`,
		keyspace, replicationFactor,
	)
}

// Rows are keyed by (post_id, event_time, event_seq). event_seq increases with
// every insert, so events sharing a millisecond are all retained and the later
// insert reads first.
func createTableCQL(keyspace string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	post_id text,
	event_time timestamp,
	event_seq bigint,
	event_type text,
	value int,
	PRIMARY KEY (post_id, event_time, event_seq)
) WITH CLUSTERING ORDER BY (event_time DESC, event_seq DESC)`, keyspace, tableName)
}

func insertCQL(keyspace string) string {
	return fmt.Sprintf(
		`INSERT INTO %s.%s (post_id, event_time, event_seq, event_type, value) VALUES (?, ?, ?, ?, ?)`,
		keyspace, tableName,
	)
}

func selectCQL(keyspace string) string {
	return fmt.Sprintf(
		`SELECT post_id, event_time, event_type, value FROM %s.%s WHERE post_id = ? LIMIT ?`,
		keyspace, tableName,
	)
}
