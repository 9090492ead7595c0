// Package backend selects and wires the persistence stack: the SQLite
// repository with AMQP change publishing, or the in-memory store for
// development and tests.
package backend

import (
	"context"
	"fmt"

	"soyte/internal/config"
	"soyte/internal/store"
)

// BackendType names a supported persistence backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (t BackendType) String() string { return string(t) }

// IsValid reports whether the backend type is supported.
func (t BackendType) IsValid() bool {
	return t == SQLiteBackend || t == MemoryBackend
}

// Config holds everything a factory needs to build a backend.
type Config struct {
	Type BackendType

	// SQLite configuration
	SQLiteDBPath string

	// AMQP configuration (optional; sqlite backend only)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// CleanupFunc represents a cleanup function for backend resources.
type CleanupFunc func() error

// Result contains the wired backend. Store is the read path; Entries is
// the write path, which may publish change messages on top of Store.
type Result struct {
	Store   store.Store
	Entries store.EntryStore
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
