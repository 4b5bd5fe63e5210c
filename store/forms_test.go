package store

import (
	"context"
	"testing"

	"github.com/mbolis/instaforms/model"
	"github.com/mbolis/instaforms/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormRoundTrip(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))
	require.NotZero(t, form.ID)
	assert.Equal(t, owner, form.CreatedBy)
	assert.False(t, form.CreatedAt.IsZero())

	got, err := forms.GetOwned(ctx, owner, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feedback", got.Title)
	assert.True(t, got.Active)

	require.Len(t, got.Fields, 2)
	assert.Equal(t, "Name", got.Fields[0].Label)
	assert.Equal(t, "Age", got.Fields[1].Label)
	assert.True(t, got.Fields[0].Required)
	assert.Equal(t, model.TypeNumber, got.Fields[1].Type)
}

func TestFieldDisplayOrder(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	// order values are not unique: ties break by insertion id
	form := &model.Form{
		Title:  "Ordering",
		Active: true,
		Fields: []model.Field{
			{Label: "B", Type: model.TypeText, Order: 2},
			{Label: "A", Type: model.TypeText, Order: 1},
			{Label: "C", Type: model.TypeText, Order: 2},
		},
	}
	require.NoError(t, forms.Create(ctx, owner, form))

	got, err := forms.GetOwned(ctx, owner, form.ID)
	require.NoError(t, err)
	require.Len(t, got.Fields, 3)
	assert.Equal(t, "A", got.Fields[0].Label)
	assert.Equal(t, "B", got.Fields[1].Label)
	assert.Equal(t, "C", got.Fields[2].Label)
}

func TestCreateFormBadDefinitionPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	form := &model.Form{
		Title:  "Broken",
		Active: true,
		Fields: []model.Field{
			{Label: "Name", Type: model.TypeText},
			{Label: "Pick", Type: model.TypeSelect}, // no options
		},
	}
	err := forms.Create(ctx, owner, form)
	require.ErrorIs(t, err, model.ErrInvalidFieldDefinition)

	assert.Zero(t, countRows(t, db, "form"))
	assert.Zero(t, countRows(t, db, "form_field"))
}

func TestOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))

	// another owner's form looks exactly like a missing one
	_, err := forms.GetOwned(ctx, other, form.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, forms.Update(ctx, other, form), ErrNotFound)
	assert.ErrorIs(t, forms.Delete(ctx, other, form.ID), ErrNotFound)
	_, err = forms.Submissions(ctx, other, form.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := forms.ListOwned(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, owned)

	owned, err = forms.ListOwned(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestUpdateForm(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))

	form.Title = "Feedback v2"
	form.Active = false
	require.NoError(t, forms.Update(ctx, owner, form))
	// deactivation is idempotent
	require.NoError(t, forms.Update(ctx, owner, form))

	got, err := forms.GetOwned(ctx, owner, form.ID)
	require.NoError(t, err)
	assert.Equal(t, "Feedback v2", got.Title)
	assert.False(t, got.Active)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestPublicRead(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	active := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, active))

	inactive := feedbackForm()
	inactive.Title = "Closed"
	inactive.Active = false
	require.NoError(t, forms.Create(ctx, owner, inactive))

	listed, err := forms.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Feedback", listed[0].Title)

	_, err = forms.GetActive(ctx, inactive.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := forms.GetActive(ctx, active.ID)
	require.NoError(t, err)
	assert.Len(t, got.Fields, 2)
}

func TestFieldOperations(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))

	t.Run("add", func(t *testing.T) {
		field := &model.Field{
			Label:   "Rating",
			Type:    model.TypeRadio,
			Options: model.Options{"good", "bad"},
			Order:   3,
		}
		require.NoError(t, forms.AddField(ctx, owner, form.ID, field))
		assert.NotZero(t, field.ID)

		bad := &model.Field{Label: "Nope", Type: "color"}
		assert.ErrorIs(t, forms.AddField(ctx, owner, form.ID, bad), model.ErrInvalidFieldDefinition)

		stranger := &model.Field{Label: "Sneaky", Type: model.TypeText}
		assert.ErrorIs(t, forms.AddField(ctx, other, form.ID, stranger), ErrNotFound)
	})

	t.Run("reorder", func(t *testing.T) {
		got, err := forms.GetOwned(ctx, owner, form.ID)
		require.NoError(t, err)
		require.Len(t, got.Fields, 3)

		// move Name last by bumping its order only
		name := got.Fields[0]
		require.Equal(t, "Name", name.Label)
		name.Order = 9
		require.NoError(t, forms.UpdateField(ctx, owner, form.ID, &name))

		got, err = forms.GetOwned(ctx, owner, form.ID)
		require.NoError(t, err)
		assert.Equal(t, "Age", got.Fields[0].Label)
		assert.Equal(t, "Name", got.Fields[2].Label)
		// identity is untouched by reordering
		assert.Equal(t, name.ID, got.Fields[2].ID)
	})

	t.Run("delete", func(t *testing.T) {
		got, err := forms.GetOwned(ctx, owner, form.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, forms.DeleteField(ctx, other, form.ID, got.Fields[0].ID), ErrNotFound)
		require.NoError(t, forms.DeleteField(ctx, owner, form.ID, got.Fields[0].ID))

		got, err = forms.GetOwned(ctx, owner, form.ID)
		require.NoError(t, err)
		assert.Len(t, got.Fields, 2)
	})
}

func TestDeleteFormCascades(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	submissions := NewSubmissions(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))

	_, err := submissions.Create(ctx, form.ID, "203.0.113.7", []validation.Accepted{
		{FieldID: form.Fields[0].ID, Value: "Ada"},
	})
	require.NoError(t, err)

	require.NoError(t, forms.Delete(ctx, owner, form.ID))

	assert.Zero(t, countRows(t, db, "form"))
	assert.Zero(t, countRows(t, db, "form_field"))
	assert.Zero(t, countRows(t, db, "submission"))
	assert.Zero(t, countRows(t, db, "field_response"))
}

func TestSubmissionsListing(t *testing.T) {
	db := newTestDB(t)
	forms := NewForms(db)
	submissions := NewSubmissions(db)
	ctx := context.Background()
	owner := createTestUser(t, db, "owner@example.com")

	form := feedbackForm()
	require.NoError(t, forms.Create(ctx, owner, form))
	name, age := form.Fields[0], form.Fields[1]

	first, err := submissions.Create(ctx, form.ID, "203.0.113.7", []validation.Accepted{
		{FieldID: name.ID, Value: "Ada"},
		{FieldID: age.ID, Value: "36"},
	})
	require.NoError(t, err)

	second, err := submissions.Create(ctx, form.ID, "", []validation.Accepted{
		{FieldID: name.ID, Value: "Grace"},
	})
	require.NoError(t, err)

	listed, err := forms.Submissions(ctx, owner, form.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := map[int][]model.FieldResponse{}
	for _, s := range listed {
		byID[s.ID] = s.Responses
		assert.False(t, s.SubmittedAt.IsZero())
	}
	require.Len(t, byID[first], 2)
	assert.Equal(t, "Ada", byID[first][0].Value)
	assert.Equal(t, name.ID, byID[first][0].FieldID)
	require.Len(t, byID[second], 1)
	assert.Equal(t, "Grace", byID[second][0].Value)
}
