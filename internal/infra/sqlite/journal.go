package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Azure/azure-ai-cli-sub003/internal/domain"
)

// ErrNotFound is returned when an invocation id is not in the journal.
var ErrNotFound = errors.New("invocation not found")

// ─── Invocation Journal ─────────────────────────────────────────────────────

// RecordInvocation stores inv and returns its id. An empty ID gets a new
// UUID; a zero StartedAt is stamped with the current time.
func (d *DB) RecordInvocation(inv domain.Invocation) (string, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	if inv.StartedAt.IsZero() {
		inv.StartedAt = time.Now()
	}

	args, err := json.Marshal(nonNil(inv.Args))
	if err != nil {
		return "", fmt.Errorf("encode args: %w", err)
	}
	values, err := json.Marshal(nonNil(inv.Values))
	if err != nil {
		return "", fmt.Errorf("encode values: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO invocations (id, command, args, named_values, exit_code, error, started_at, duration_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Command, string(args), string(values), inv.ExitCode, inv.Error,
		inv.StartedAt.UnixNano(), inv.Duration.Microseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("record invocation: %w", err)
	}
	return inv.ID, nil
}

// GetInvocation returns one invocation by id.
func (d *DB) GetInvocation(id string) (*domain.Invocation, error) {
	row := d.db.QueryRow(
		`SELECT id, command, args, named_values, exit_code, error, started_at, duration_us
		 FROM invocations WHERE id = ?`, id)
	inv, err := scanInvocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return inv, err
}

// ListInvocations returns up to limit invocations, newest first. A
// non-empty command filters by exact command name.
func (d *DB) ListInvocations(limit int, command string) ([]domain.Invocation, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := d.db.Query(
		`SELECT id, command, args, named_values, exit_code, error, started_at, duration_us
		 FROM invocations
		 WHERE ? = '' OR command = ?
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`, command, command, limit)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var out []domain.Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// CountInvocations returns the number of journal entries.
func (d *DB) CountInvocations() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM invocations`).Scan(&n)
	return n, err
}

// ClearInvocations deletes every entry and returns how many were removed.
func (d *DB) ClearInvocations() (int64, error) {
	res, err := d.db.Exec(`DELETE FROM invocations`)
	if err != nil {
		return 0, fmt.Errorf("clear invocations: %w", err)
	}
	return res.RowsAffected()
}

// PruneInvocations keeps the newest keep entries.
func (d *DB) PruneInvocations(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := d.db.Exec(
		`DELETE FROM invocations WHERE id NOT IN (
			SELECT id FROM invocations ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune invocations: %w", err)
	}
	return res.RowsAffected()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

type scanner interface {
	Scan(dest ...any) error
}

func scanInvocation(s scanner) (*domain.Invocation, error) {
	var (
		inv        domain.Invocation
		args       string
		values     string
		startedAt  int64
		durationUS int64
	)
	err := s.Scan(&inv.ID, &inv.Command, &args, &values, &inv.ExitCode, &inv.Error, &startedAt, &durationUS)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(args), &inv.Args); err != nil {
		return nil, fmt.Errorf("decode args of %s: %w", inv.ID, err)
	}
	if err := json.Unmarshal([]byte(values), &inv.Values); err != nil {
		return nil, fmt.Errorf("decode values of %s: %w", inv.ID, err)
	}
	inv.StartedAt = time.Unix(0, startedAt)
	inv.Duration = time.Duration(durationUS) * time.Microsecond
	return &inv, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
