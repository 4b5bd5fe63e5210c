package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbolis/instaforms/validation"
)

type Submissions struct {
	db *sql.DB
}

func NewSubmissions(db *sql.DB) *Submissions {
	return &Submissions{db}
}

// Create stores one submission and all of its responses as a single
// atomic unit. The active flag and every field's membership in the form
// are re-checked inside the transaction: validation ran earlier on a
// snapshot that may have been deactivated or edited since. The
// submission timestamp is assigned here, not by the caller.
func (s *Submissions) Create(ctx context.Context, formID int, ip string, accepted []validation.Accepted) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, `
		SELECT active FROM form WHERE id = ?`,
		formID,
	).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if !active {
		return 0, ErrFormInactive
	}

	var ipValue any
	if ip != "" {
		ipValue = ip
	}

	var submissionID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO submission (form_id, submitted_at, ip) VALUES (?, ?, ?)
		RETURNING id`,
		formID, time.Now().UTC(), ipValue,
	).Scan(&submissionID)
	if err != nil {
		return 0, err
	}

	// the INSERT..SELECT only matches a field that still belongs to this
	// form; zero rows means the race was lost and the whole unit aborts
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO field_response (submission_id, field_id, value)
		SELECT ?, id, ? FROM form_field
		WHERE id = ? AND form_id = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, a := range accepted {
		res, err := stmt.ExecContext(ctx, submissionID, a.Value, a.FieldID, formID)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n < 1 {
			return 0, fmt.Errorf("%w: field %d no longer belongs to form %d",
				ErrSubmissionFailed, a.FieldID, formID)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	return submissionID, nil
}
