package model

import "time"

type Form struct {
	ID          int       `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   int       `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
	Active      bool      `json:"active"`
	Fields      []Field   `json:"fields"`
}

// Field is one typed input definition within a form. Display order is
// (Order, ID): Order values need not be unique, insertion id breaks ties.
type Field struct {
	ID          int       `json:"id,omitempty"`
	FormID      int       `json:"-"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     Options   `json:"options,omitempty"`
	Order       int       `json:"order"`
}

// Submission is append-only: never mutated after creation.
type Submission struct {
	ID          int             `json:"id"`
	FormID      int             `json:"form_id,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	IP          string          `json:"ip,omitempty"`
	Responses   []FieldResponse `json:"responses"`
}

type FieldResponse struct {
	ID           int    `json:"id,omitempty"`
	SubmissionID int    `json:"-"`
	FieldID      int    `json:"field_id"`
	Value        string `json:"value"`
}
