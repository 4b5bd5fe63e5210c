// Package validation checks an untyped submission payload against a form
// definition. It is a pure computation: no IO, no shared state, identical
// input gives identical output.
package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/instaforms/model"
)

// Entry is one raw answer as supplied by the respondent. Everything but
// the field reference is untyped text.
type Entry struct {
	FieldID int    `json:"field_id"`
	Value   string `json:"value"`
}

// Accepted is one validated (field, value) pair ready to be stored.
type Accepted struct {
	FieldID int
	Value   string
}

// Errors maps a field id (decimal string, the JSON object key) to the
// human-readable problems found for that field.
type Errors map[string][]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	return "validation failed for fields " + strings.Join(keys, ", ")
}

func (e Errors) add(fieldID int, msg string) {
	key := strconv.Itoa(fieldID)
	e[key] = append(e[key], msg)
}

const (
	MsgUnknownField  = "unknown field"
	MsgRequired      = "this field is required"
	MsgInvalidEmail  = "enter a valid email address"
	MsgInvalidNumber = "enter a valid number"
	MsgInvalidDate   = "enter a valid date in YYYY-MM-DD format"
	MsgInvalidOption = "select a valid choice"
)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether the value matches a plain address grammar.
func ValidEmail(value string) bool {
	return reEmail.MatchString(value)
}

// Validate resolves every entry against the form's fields and runs the
// per-type checks. It never short-circuits: the returned Errors carries
// every problem found, keyed by field id. On success it returns the
// accepted pairs ordered by field declaration (order, id), not by
// submission order; duplicate entries for a checkbox field keep their
// payload order, for any other type the last entry wins.
func Validate(form *model.Form, entries []Entry) ([]Accepted, Errors) {
	errs := Errors{}

	fields := make(map[int]*model.Field, len(form.Fields))
	for i := range form.Fields {
		fields[form.Fields[i].ID] = &form.Fields[i]
	}

	values := make(map[int][]string)
	for _, e := range entries {
		if _, ok := fields[e.FieldID]; !ok {
			errs.add(e.FieldID, MsgUnknownField)
			continue
		}
		values[e.FieldID] = append(values[e.FieldID], e.Value)
	}

	var accepted []Accepted
	for i := range form.Fields {
		f := &form.Fields[i]
		vs := values[f.ID]

		answered := false
		for _, v := range vs {
			if strings.TrimSpace(v) != "" {
				answered = true
				break
			}
		}
		if f.Required && !answered {
			errs.add(f.ID, MsgRequired)
			continue
		}

		ok := true
		for _, v := range vs {
			if msg := checkValue(f, v); msg != "" {
				errs.add(f.ID, msg)
				ok = false
			}
		}
		if !ok || len(vs) == 0 {
			continue
		}

		if f.Type == model.TypeCheckbox {
			for _, v := range vs {
				accepted = append(accepted, Accepted{FieldID: f.ID, Value: v})
			}
		} else {
			accepted = append(accepted, Accepted{FieldID: f.ID, Value: vs[len(vs)-1]})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return accepted, nil
}

// checkValue runs the per-type format check on one raw value. Empty
// values are only ever rejected by the required rule, never here.
func checkValue(f *model.Field, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}

	switch f.Type {
	case model.TypeEmail:
		if !ValidEmail(value) {
			return MsgInvalidEmail
		}
	case model.TypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return MsgInvalidNumber
		}
	case model.TypeDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return MsgInvalidDate
		}
	case model.TypeSelect, model.TypeRadio, model.TypeCheckbox:
		if !f.Options.Contains(value) {
			return MsgInvalidOption
		}
	}
	return ""
}
