package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrick-jessen/enginectl/internal/settingsync"
)

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"

	recordTimeout = 5 * time.Second
)

// Entry is one journaled write or group commit.
type Entry struct {
	At      time.Time
	Engine  string
	Group   string
	Key     string
	Wire    string
	Outcome string
	Error   string
	ID      int64
}

// Commit reports whether the entry is a group apply rather than a member write.
func (e Entry) Commit() bool {
	return e.Key == ""
}

// Journal stores the writes a session performs. It implements settingsync.Recorder.
type Journal struct {
	manager *Manager
}

var _ settingsync.Recorder = (*Journal)(nil)

func NewJournal(manager *Manager) *Journal {
	return &Journal{manager: manager}
}

// Record appends r to the journal.
func (j *Journal) Record(r settingsync.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	wire := ""
	if r.Wire != nil {
		data, err := json.Marshal(r.Wire)
		if err != nil {
			return fmt.Errorf("failed to encode wire value: %w", err)
		}
		wire = string(data)
	}

	outcome, errText := OutcomeOK, ""
	if r.Err != nil {
		outcome, errText = OutcomeFailed, r.Err.Error()
	}

	at := r.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err := j.manager.DB().ExecContext(ctx,
		`INSERT INTO commits (engine, group_key, setting_key, wire, outcome, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Engine, string(r.Group), string(r.Key), wire, outcome, errText, at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record write: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := j.manager.DB().QueryContext(ctx,
		`SELECT id, engine, group_key, setting_key, wire, outcome, error, created_at
		 FROM commits ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Engine, &e.Group, &e.Key, &e.Wire, &e.Outcome, &e.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.At = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}
