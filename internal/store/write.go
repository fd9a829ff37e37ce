package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/roach88/recon/internal/ir"
)

// WriteEvent appends ev. Duplicate ids are ignored.
func (s *Store) WriteEvent(ctx context.Context, ev ir.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := insertEvent(ctx, tx, ev)
		return err
	})
}

// Record implements workflow.Recorder: it appends ev and keeps the attempts
// table in step with submission events, in one transaction.
func (s *Store) Record(ctx context.Context, ev ir.Event) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		inserted, err := insertEvent(ctx, tx, ev)
		if err != nil || !inserted {
			return err
		}
		return applyAttempt(ctx, tx, ev)
	})
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev ir.Event) (bool, error) {
	if ev.ID == "" {
		return false, fmt.Errorf("write event: empty id")
	}
	attrs, err := marshalAttrs(ev.Attrs)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO events (id, workflow_id, attempt_id, kind, state, seq, attrs)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, ev.ID, ev.WorkflowID, ev.AttemptID, string(ev.Kind), ev.State, ev.Seq, attrs)
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write event: %w", err)
	}
	return n == 1, nil
}

// applyAttempt projects a submission event onto the attempts table.
func applyAttempt(ctx context.Context, tx *sql.Tx, ev ir.Event) error {
	var err error
	switch ev.Kind {
	case ir.EventSubmissionStarted:
		label := ev.Attrs[ir.AttrLabel]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attempts
			(id, workflow_id, label, label_key, current_name, current_digest,
			 previous_name, previous_digest, outcome, started_seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`,
			ev.AttemptID,
			ev.WorkflowID,
			label,
			labelKey(label),
			ev.Attrs[ir.AttrCurrentName],
			ev.Attrs[ir.AttrCurrentDigest],
			ev.Attrs[ir.AttrPreviousName],
			ev.Attrs[ir.AttrPreviousDigest],
			string(OutcomePending),
			ev.Seq,
		)

	case ir.EventSubmissionSucceeded:
		_, err = tx.ExecContext(ctx, `
			UPDATE attempts
			SET outcome = ?, primary_token = ?, secondary_token = ?, summary_token = ?, resolved_seq = ?
			WHERE id = ?
		`,
			string(OutcomeSucceeded),
			ev.Attrs[string(ir.RolePrimary)],
			ev.Attrs[string(ir.RoleSecondary)],
			ev.Attrs[string(ir.RoleSummary)],
			ev.Seq,
			ev.AttemptID,
		)

	case ir.EventSubmissionFailed:
		status, _ := strconv.Atoi(ev.Attrs[ir.AttrStatusCode])
		_, err = tx.ExecContext(ctx, `
			UPDATE attempts
			SET outcome = ?, error_code = ?, status_code = ?, resolved_seq = ?
			WHERE id = ?
		`, string(OutcomeFailed), ev.Attrs[ir.AttrErrorCode], status, ev.Seq, ev.AttemptID)

	case ir.EventSubmissionDiscarded:
		_, err = tx.ExecContext(ctx, `
			UPDATE attempts SET outcome = ?, resolved_seq = ? WHERE id = ?
		`, string(OutcomeDiscarded), ev.Seq, ev.AttemptID)
	}
	if err != nil {
		return fmt.Errorf("write attempt %s: %w", ev.AttemptID, err)
	}
	return nil
}

// labelKey is the lookup form of a label.
func labelKey(label string) string {
	return ir.NormalizeText(label)
}
