package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roman-kulish/bladerf/internal/capture"
)

const DefaultReaderBatchSize = 1000

// WithBatchSize sets how many rows the reader fetches per query.
func WithBatchSize(n int) func(*TransferReader) {
	return func(r *TransferReader) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithStartSeq skips transfers with a lower sequence number.
func WithStartSeq(seq uint64) func(*TransferReader) {
	return func(r *TransferReader) {
		r.nextSeq = int64(seq)
	}
}

// WithAnomaliesOnly keeps only transfers with a non-zero status word, such as
// overruns.
func WithAnomaliesOnly() func(*TransferReader) {
	return func(r *TransferReader) {
		r.anomaliesOnly = true
	}
}

// TransferReader iterates over the transfers of one session in sequence
// order, fetching them in pages.
type TransferReader struct {
	db        *sql.DB
	stmt      *sql.Stmt
	sessionID int64

	batchSize     int
	nextSeq       int64
	anomaliesOnly bool

	page    []capture.Transfer
	pos     int
	current capture.Transfer
	done    bool
	err     error
}

func newTransferReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...func(*TransferReader)) (*TransferReader, error) {
	if sessionID <= 0 {
		return nil, errors.New("session ID required")
	}

	r := &TransferReader{
		db:        db,
		sessionID: sessionID,
		batchSize: DefaultReaderBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	stmt, err := db.PrepareContext(ctx, selectTransfersSQL)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	r.stmt = stmt

	return r, nil
}

// Next advances the iterator and returns true if there is another transfer
// to read, false when the iteration is complete or if an error occurred.
func (r *TransferReader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}

	if r.pos >= len(r.page) {
		if r.done {
			return false
		}
		if r.err = r.fetch(ctx); r.err != nil || len(r.page) == 0 {
			return false
		}
	}

	r.current = r.page[r.pos]
	r.pos++
	return true
}

// Current returns the transfer the iterator is positioned on.
func (r *TransferReader) Current() capture.Transfer {
	return r.current
}

// Error returns any error that occurred during iteration.
func (r *TransferReader) Error() error {
	return r.err
}

func (r *TransferReader) Close() error {
	if r.stmt == nil {
		return nil
	}
	err := r.stmt.Close()
	r.stmt = nil
	return err
}

func (r *TransferReader) fetch(ctx context.Context) (err error) {
	if r.stmt == nil {
		return errors.New("reader is closed")
	}

	anomalies := 0
	if r.anomaliesOnly {
		anomalies = 1
	}

	rows, err := r.stmt.QueryContext(ctx, r.sessionID, r.nextSeq, anomalies, r.batchSize)
	if err != nil {
		return fmt.Errorf("querying transfers: %w", err)
	}
	defer closeWithError(rows, &err)

	r.page = r.page[:0]
	r.pos = 0

	for rows.Next() {
		var d transferData
		if err = rows.Scan(&d.Seq, &d.Timestamp, &d.Samples, &d.Flags, &d.Status, &d.Retries, &d.ReceivedAt); err != nil {
			return fmt.Errorf("scanning transfer: %w", err)
		}
		r.page = append(r.page, fromTransferData(&d))
		r.nextSeq = d.Seq + 1
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterating transfers: %w", err)
	}

	if len(r.page) < r.batchSize {
		r.done = true
	}

	return nil
}
