package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/recon/internal/ir"
)

// ReadEvents returns a workflow's events ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when the workflow is unknown.
func (s *Store) ReadEvents(ctx context.Context, workflowID string) ([]ir.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, workflow_id, attempt_id, kind, state, seq, attrs
		FROM events
		WHERE workflow_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var ev ir.Event
		var kind, attrs string
		if err := rows.Scan(&ev.ID, &ev.WorkflowID, &ev.AttemptID, &kind, &ev.State, &ev.Seq, &attrs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Kind = ir.EventKind(kind)
		if ev.Attrs, err = unmarshalAttrs(attrs); err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// ReadAttempts returns attempts newest first.
func (s *Store) ReadAttempts(ctx context.Context, f AttemptFilter) ([]Attempt, error) {
	var where []string
	var args []any
	if f.WorkflowID != "" {
		where = append(where, "workflow_id = ?")
		args = append(args, f.WorkflowID)
	}
	if f.Label != "" {
		where = append(where, "label_key = ?")
		args = append(args, labelKey(f.Label))
	}

	query := `
		SELECT id, workflow_id, label, current_name, current_digest, previous_name,
		       previous_digest, outcome, error_code, status_code, primary_token,
		       secondary_token, summary_token, started_seq, resolved_seq
		FROM attempts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	// rowid follows insertion order; seq restarts for every workflow.
	query += " ORDER BY rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

// LatestWorkflowID returns the workflow of the most recent event.
// Returns "" when the journal is empty.
func (s *Store) LatestWorkflowID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT workflow_id FROM events ORDER BY rowid DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest workflow: %w", err)
	}
	return id, nil
}

func scanAttempt(rows *sql.Rows) (Attempt, error) {
	var a Attempt
	var outcome, primary, secondary, summary string
	err := rows.Scan(
		&a.ID, &a.WorkflowID, &a.Label, &a.CurrentName, &a.CurrentDigest,
		&a.PreviousName, &a.PreviousDigest, &outcome, &a.ErrorCode, &a.StatusCode,
		&primary, &secondary, &summary, &a.StartedSeq, &a.ResolvedSeq,
	)
	if err != nil {
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	a.Outcome = Outcome(outcome)
	if primary != "" || secondary != "" || summary != "" {
		a.Tokens = map[ir.Role]string{
			ir.RolePrimary:   primary,
			ir.RoleSecondary: secondary,
			ir.RoleSummary:   summary,
		}
	}
	return a, nil
}
