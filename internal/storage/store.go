// Package storage persists capture sessions and their per transfer metadata.
package storage

import (
	"context"

	"github.com/roman-kulish/bladerf/internal/capture"
)

// Store provides an interface for managing capture data storage operations.
// It handles sessions and transfer records in a thread-safe manner.
// All operations that write to the database should be considered atomic.
type Store interface {
	// CreateSession records a new capture session and sets its ID.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - session: Session to record. StartTime defaults to now.
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, session *Session) (sessionID int64, err error)

	// FinishSession stores the outcome of a capture run.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sessionID: ID of the session to update
	//   - stats: Statistics returned by the capture session
	//
	// Returns:
	//   - error: If the update fails or the session does not exist
	FinishSession(ctx context.Context, sessionID int64, stats capture.Stats) error

	// Session retrieves a specific session by its ID.
	//
	// Returns:
	//   - session: Pointer to session data
	//   - error: If retrieval fails, wrapping sql.ErrNoRows when not found
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all sessions ordered by start time in ascending order.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreTransfers saves a batch of transfer records in a single atomic
	// transaction.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sessionID: ID of the session the transfers belong to
	//   - transfers: Records produced by the capture session
	//
	// Returns:
	//   - error: If storage fails or context is cancelled
	StoreTransfers(ctx context.Context, sessionID int64, transfers []capture.Transfer) error

	// Transfers returns all transfer records of a session ordered by sequence.
	Transfers(ctx context.Context, sessionID int64) ([]capture.Transfer, error)

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}

// SessionSink binds a store to one session so it can receive transfer
// batches from a running capture.
func SessionSink(store Store, sessionID int64) capture.Sink {
	return capture.SinkFunc(func(ctx context.Context, transfers []capture.Transfer) error {
		return store.StoreTransfers(ctx, sessionID, transfers)
	})
}
