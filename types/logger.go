package types

// Logger is the structured logger used by controllers, locks, stores and
// the topology watcher.
//
// Messages are short lowercase phrases ("rotation lock acquired") followed by
// alternating key-value pairs ("instance", id, "rotations", n). Keys in use
// include instance, rotation, endpoint, key, owner, seq and error.
//
// rotacl.NewSlogLogger adapts log/slog. zap's SugaredLogger satisfies the
// interface directly.
type Logger interface {
	// Debug logs lock traffic and per-endpoint allocation decisions.
	Debug(msg string, keysAndValues ...any)

	// Info logs committed assignments, released instances and pool loading.
	Info(msg string, keysAndValues ...any)

	// Warn logs recoverable conditions such as retried lock renewals or
	// questionable configuration.
	Warn(msg string, keysAndValues ...any)

	// Error logs failed operations and lost lock leases.
	Error(msg string, keysAndValues ...any)

	// Fatal logs and terminates the process. rotacl never calls it; it is
	// part of the interface so common loggers fit unchanged.
	Fatal(msg string, keysAndValues ...any)
}
