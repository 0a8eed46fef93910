package repository

import "time"

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPingAttempts sets how many times opening the store pings the server.
func WithPingAttempts(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.pingAttempts = n
		}
	}
}

// WithPingInterval sets the delay between ping attempts.
func WithPingInterval(d time.Duration) PostgresOption {
	return func(s *PostgresStore) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

// WithTable sets the documents table name.
func WithTable(name string) PostgresOption {
	return func(s *PostgresStore) {
		if name != "" {
			s.table = name
		}
	}
}
