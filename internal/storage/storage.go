// Package storage persists recorded flight sessions and their telemetry
// snapshots in a SQLite database. Writes go through a WAL connection,
// reads through a separate read-only connection; both are opened lazily.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openflight/tello"
)

// Store handles flight session database operations.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the database at dbPath. The file and schema
// are created on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateSession inserts a new flight session and returns its identifier.
// Serial and sdkVersion may be empty when the queries failed or were
// skipped.
func (s *Store) CreateSession(ctx context.Context, serial, sdkVersion string) (sessionID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, err
	}

	result, err := db.ExecContext(ctx, insertSessionSQL,
		toNullString(serial), toNullString(sdkVersion))
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	if sessionID, err = result.LastInsertId(); err != nil {
		return 0, fmt.Errorf("getting session ID: %w", err)
	}
	return sessionID, nil
}

// Session retrieves one session, or nil when the ID is unknown.
func (s *Store) Session(ctx context.Context, id int64) (*Session, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, err
	}

	var session Session
	var serial, sdkVersion sql.NullString
	err = db.QueryRowContext(ctx, selectSessionSQL, id).
		Scan(&session.ID, &session.StartTime, &serial, &sdkVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("selecting session %d: %w", id, err)
	}

	session.DroneSerial = serial.String
	session.SDKVersion = sdkVersion.String
	return &session, nil
}

// StoreStates saves a batch of telemetry records for a session in a single
// transaction.
func (s *Store) StoreStates(ctx context.Context, sessionID int64, records []Record) (err error) {
	if len(records) == 0 {
		return nil
	}

	db, err := s.getWriteDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rollbackWithError(tx, &err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, insertStateSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	for _, r := range records {
		st := r.State
		if _, err = stmt.ExecContext(ctx, sessionID, r.Timestamp.UTC(),
			st.Roll, st.Pitch, st.Yaw,
			st.Height, st.Barometer, st.Battery,
			st.TimeOfFlight, st.MotorTime,
			st.TemperatureLow, st.TemperatureHigh,
			st.Velocity.X, st.Velocity.Y, st.Velocity.Z,
			st.Acceleration.X, st.Acceleration.Y, st.Acceleration.Z,
		); err != nil {
			return fmt.Errorf("inserting state: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close releases both database connections. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.writeDB != nil {
			if err := s.writeDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing write connection: %w", err))
			}
		}
		if s.readDB != nil {
			if err := s.readDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing read connection: %w", err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}

// Session describes one recorded flight.
type Session struct {
	ID          int64
	StartTime   time.Time
	DroneSerial string
	SDKVersion  string
}

// Record is one telemetry snapshot with the wall-clock time it was
// received. The drone's own lines carry no timestamp.
type Record struct {
	Timestamp time.Time
	State     tello.State
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil {
		*err = cErr
	}
}
