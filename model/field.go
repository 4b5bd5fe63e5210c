package model

import (
	"database/sql/driver"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
)

// FieldType is the closed set of input types a form field can take.
// Validation dispatches over it with a switch, there is no per-type
// behavior beyond that.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeEmail    FieldType = "email"
	TypeNumber   FieldType = "number"
	TypeTextarea FieldType = "textarea"
	TypeSelect   FieldType = "select"
	TypeRadio    FieldType = "radio"
	TypeCheckbox FieldType = "checkbox"
	TypeDate     FieldType = "date"
	TypeFile     FieldType = "file"
)

func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeEmail, TypeNumber, TypeTextarea,
		TypeSelect, TypeRadio, TypeCheckbox, TypeDate, TypeFile:
		return true
	}
	return false
}

// NeedsOptions reports whether the type only makes sense with a list of
// selectable values.
func (t FieldType) NeedsOptions() bool {
	switch t {
	case TypeSelect, TypeRadio, TypeCheckbox:
		return true
	}
	return false
}

// ErrInvalidFieldDefinition rejects malformed field definitions before
// anything is persisted.
var ErrInvalidFieldDefinition = errors.New("invalid field definition")

// Options is the ordered list of selectable values of a choice field.
// It is stored as a JSON array in a nullable text column.
type Options []string

func (o Options) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (o *Options) Scan(src any) error {
	switch src := src.(type) {
	case nil:
		*o = nil
		return nil
	case string:
		if src == "" {
			*o = nil
			return nil
		}
		return json.Unmarshal([]byte(src), o)
	case []byte:
		if len(src) == 0 {
			*o = nil
			return nil
		}
		return json.Unmarshal(src, o)
	}
	return fmt.Errorf("options: cannot scan %T", src)
}

func (o Options) Contains(value string) bool {
	for _, opt := range o {
		if opt == value {
			return true
		}
	}
	return false
}

// ValidateDefinition checks type/options consistency. Options supplied on
// a type that takes none are silently dropped.
func (f *Field) ValidateDefinition() error {
	if !f.Type.Valid() {
		return fmt.Errorf("%w: unknown field type %q", ErrInvalidFieldDefinition, f.Type)
	}
	if f.Type.NeedsOptions() {
		if len(f.Options) == 0 {
			return fmt.Errorf("%w: %s field %q requires options", ErrInvalidFieldDefinition, f.Type, f.Label)
		}
	} else {
		f.Options = nil
	}
	return nil
}

// ValidateFields checks every definition and reports all offenders at
// once, so a form creation round trip surfaces the full picture.
func ValidateFields(fields []Field) error {
	var errs *multierror.Error
	for i := range fields {
		if err := fields[i].ValidateDefinition(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
