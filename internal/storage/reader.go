package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// ReaderOption narrows which telemetry records a StateReader returns.
type ReaderOption func(*StateReader)

// WithStartTime excludes records before t.
func WithStartTime(t time.Time) ReaderOption {
	return func(r *StateReader) {
		r.startTime = &t
	}
}

// WithEndTime excludes records after t.
func WithEndTime(t time.Time) ReaderOption {
	return func(r *StateReader) {
		r.endTime = &t
	}
}

// WithTimeRange excludes records outside [start, end].
func WithTimeRange(start, end time.Time) ReaderOption {
	return func(r *StateReader) {
		r.startTime = &start
		r.endTime = &end
	}
}

// StateReader iterates a session's telemetry records in timestamp order.
type StateReader struct {
	sessionID int64
	startTime *time.Time
	endTime   *time.Time

	rows    *sql.Rows
	current Record
	err     error
}

// ReadStates returns an iterator over a session's telemetry records.
func (s *Store) ReadStates(ctx context.Context, sessionID int64, opts ...ReaderOption) (*StateReader, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	r := &StateReader{sessionID: sessionID}
	for _, opt := range opts {
		opt(r)
	}

	var sb strings.Builder
	sb.WriteString(selectStatesSQL)
	args := []any{sessionID}
	if r.startTime != nil {
		sb.WriteString(" AND timestamp >= ?")
		args = append(args, r.startTime.UTC())
	}
	if r.endTime != nil {
		sb.WriteString(" AND timestamp <= ?")
		args = append(args, r.endTime.UTC())
	}
	sb.WriteString(" ORDER BY timestamp")

	if r.rows, err = db.QueryContext(ctx, sb.String(), args...); err != nil {
		return nil, fmt.Errorf("querying states: %w", err)
	}
	return r, nil
}

// Next advances to the next record, returning false at the end of the data
// or on error; check Error to tell the two apart.
func (r *StateReader) Next() bool {
	if r.err != nil || !r.rows.Next() {
		if r.err == nil {
			r.err = r.rows.Err()
		}
		return false
	}

	var rec Record
	st := &rec.State
	if err := r.rows.Scan(&rec.Timestamp,
		&st.Roll, &st.Pitch, &st.Yaw,
		&st.Height, &st.Barometer, &st.Battery,
		&st.TimeOfFlight, &st.MotorTime,
		&st.TemperatureLow, &st.TemperatureHigh,
		&st.Velocity.X, &st.Velocity.Y, &st.Velocity.Z,
		&st.Acceleration.X, &st.Acceleration.Y, &st.Acceleration.Z,
	); err != nil {
		r.err = fmt.Errorf("scanning state row: %w", err)
		return false
	}

	r.current = rec
	return true
}

// Current returns the record at the iterator's position. Undefined after
// Next has returned false.
func (r *StateReader) Current() Record {
	return r.current
}

// Error returns the first error encountered during iteration.
func (r *StateReader) Error() error {
	return r.err
}

// Close releases the underlying rows.
func (r *StateReader) Close() error {
	return r.rows.Close()
}
