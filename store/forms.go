// Package store persists forms, fields and submissions over database/sql.
// Owner-scoped operations take the caller's user id explicitly; they treat
// rows of other owners exactly like missing rows.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mbolis/instaforms/model"
)

type Forms struct {
	db *sql.DB
}

func NewForms(db *sql.DB) *Forms {
	return &Forms{db}
}

// Create inserts the form and all of its fields in one transaction.
// Field definitions are validated first; a definition error leaves the
// store untouched and reports every bad field at once.
func (s *Forms) Create(ctx context.Context, ownerID int, form *model.Form) error {
	if err := model.ValidateFields(form.Fields); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO form (title, description, created_by, created_at, updated_at, active)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		form.Title, form.Description, ownerID, now, now, form.Active,
	).Scan(&form.ID)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO form_field (form_id, label, type, required, placeholder, options, "order")
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range form.Fields {
		f := &form.Fields[i]
		err = stmt.QueryRowContext(ctx,
			form.ID, f.Label, f.Type, f.Required, f.Placeholder, f.Options, f.Order,
		).Scan(&f.ID)
		if err != nil {
			return err
		}
		f.FormID = form.ID
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	form.CreatedBy = ownerID
	form.CreatedAt, form.UpdatedAt = now, now
	return nil
}

func (s *Forms) ListOwned(ctx context.Context, ownerID int) ([]model.Form, error) {
	return s.list(ctx, `WHERE created_by = ?`, ownerID)
}

// ListActive is the public read path: active forms only, any owner.
func (s *Forms) ListActive(ctx context.Context) ([]model.Form, error) {
	return s.list(ctx, `WHERE active`)
}

func (s *Forms) list(ctx context.Context, where string, args ...any) ([]model.Form, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, created_by, created_at, updated_at, active
		FROM form `+where+`
		ORDER BY created_at DESC, id DESC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		form := model.Form{}
		err = rows.Scan(
			&form.ID, &form.Title, &form.Description,
			&form.CreatedBy, &form.CreatedAt, &form.UpdatedAt, &form.Active,
		)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range forms {
		forms[i].Fields, err = s.fields(ctx, forms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return forms, nil
}

func (s *Forms) GetOwned(ctx context.Context, ownerID, formID int) (*model.Form, error) {
	return s.get(ctx, `WHERE id = ? AND created_by = ?`, formID, ownerID)
}

func (s *Forms) GetActive(ctx context.Context, formID int) (*model.Form, error) {
	return s.get(ctx, `WHERE id = ? AND active`, formID)
}

func (s *Forms) get(ctx context.Context, where string, args ...any) (*model.Form, error) {
	form := model.Form{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, created_by, created_at, updated_at, active
		FROM form `+where,
		args...,
	).Scan(
		&form.ID, &form.Title, &form.Description,
		&form.CreatedBy, &form.CreatedAt, &form.UpdatedAt, &form.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	form.Fields, err = s.fields(ctx, form.ID)
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *Forms) fields(ctx context.Context, formID int) ([]model.Field, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, label, type, required, placeholder, options, "order"
		FROM form_field
		WHERE form_id = ?
		ORDER BY "order", id`,
		formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []model.Field{}
	for rows.Next() {
		f := model.Field{}
		err = rows.Scan(
			&f.ID, &f.FormID, &f.Label, &f.Type,
			&f.Required, &f.Placeholder, &f.Options, &f.Order,
		)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// Update changes title, description and the active flag. Flipping the
// active flag is idempotent. Fields are managed through the field
// operations below, not here.
func (s *Forms) Update(ctx context.Context, ownerID int, form *model.Form) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE form
		SET title = ?, description = ?, active = ?, updated_at = ?
		WHERE id = ? AND created_by = ?`,
		form.Title, form.Description, form.Active, now,
		form.ID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	form.UpdatedAt = now
	return nil
}

// Delete removes the form; fields, submissions and responses go with it.
func (s *Forms) Delete(ctx context.Context, ownerID, formID int) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM form
		WHERE id = ? AND created_by = ?`,
		formID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// AddField appends a field to an owned form. The INSERT..SELECT keeps the
// ownership check and the insert in one statement.
func (s *Forms) AddField(ctx context.Context, ownerID, formID int, f *model.Field) error {
	if err := f.ValidateDefinition(); err != nil {
		return err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO form_field (form_id, label, type, required, placeholder, options, "order")
		SELECT id, ?, ?, ?, ?, ?, ?
		FROM form
		WHERE id = ? AND created_by = ?
		RETURNING id`,
		f.Label, f.Type, f.Required, f.Placeholder, f.Options, f.Order,
		formID, ownerID,
	).Scan(&f.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	f.FormID = formID
	return nil
}

// UpdateField rewrites a field definition in place. Changing only the
// order attribute is how reordering works; identity never changes.
func (s *Forms) UpdateField(ctx context.Context, ownerID, formID int, f *model.Field) error {
	if err := f.ValidateDefinition(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE form_field
		SET label = ?, type = ?, required = ?, placeholder = ?, options = ?, "order" = ?
		WHERE id = ?
			AND form_id = (SELECT id FROM form WHERE id = ? AND created_by = ?)`,
		f.Label, f.Type, f.Required, f.Placeholder, f.Options, f.Order,
		f.ID, formID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	f.FormID = formID
	return nil
}

func (s *Forms) DeleteField(ctx context.Context, ownerID, formID, fieldID int) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM form_field
		WHERE id = ?
			AND form_id = (SELECT id FROM form WHERE id = ? AND created_by = ?)`,
		fieldID, formID, ownerID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return ErrNotFound
	}
	return nil
}

// Submissions lists a form's submissions with their responses, newest
// first, responses in field display order. Owner-only.
func (s *Forms) Submissions(ctx context.Context, ownerID, formID int) ([]model.Submission, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM form WHERE id = ? AND created_by = ?`,
		formID, ownerID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.submitted_at, s.ip, r.id, r.field_id, r.value
		FROM submission s
		LEFT OUTER JOIN field_response r ON (r.submission_id = s.id)
		LEFT OUTER JOIN form_field f ON (f.id = r.field_id)
		WHERE s.form_id = ?
		ORDER BY s.submitted_at DESC, s.id DESC, f."order", f.id, r.id`,
		formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var (
			sub        model.Submission
			ip         sql.NullString
			responseID sql.NullInt64
			fieldID    sql.NullInt64
			value      sql.NullString
		)
		err = rows.Scan(&sub.ID, &sub.SubmittedAt, &ip, &responseID, &fieldID, &value)
		if err != nil {
			return nil, err
		}
		sub.IP = ip.String
		sub.FormID = formID

		lastIdx := len(submissions) - 1
		if lastIdx < 0 || submissions[lastIdx].ID != sub.ID {
			sub.Responses = []model.FieldResponse{}
			submissions = append(submissions, sub)
			lastIdx++
		}
		if responseID.Valid {
			submissions[lastIdx].Responses = append(submissions[lastIdx].Responses, model.FieldResponse{
				ID:           int(responseID.Int64),
				SubmissionID: sub.ID,
				FieldID:      int(fieldID.Int64),
				Value:        value.String,
			})
		}
	}
	return submissions, rows.Err()
}
