package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/mbolis/instaforms/app"
	"github.com/mbolis/instaforms/httpx"
	"github.com/mbolis/instaforms/log"
	"github.com/mbolis/instaforms/model"
	"github.com/mbolis/instaforms/store"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}

		form := model.Form{Active: true}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(form.Title) == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_form.title", "title must not be empty")
			return
		}

		err = app.Forms.Create(r.Context(), userID, &form)
		if errors.Is(err, model.ErrInvalidFieldDefinition) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_form.fields", "%s", err)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}

		forms, err := app.Forms.ListOwned(r.Context(), userID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		form, err := app.Forms.GetOwned(r.Context(), userID, formID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if strings.TrimSpace(form.Title) == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "update_form.title", "title must not be empty")
			return
		}
		form.ID = formID

		err = app.Forms.Update(r.Context(), userID, &form)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "update_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		err := app.Forms.Delete(r.Context(), userID, formID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "delete_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func AddFormField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		field := model.Field{}
		err := render.DecodeJSON(r.Body, &field)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Forms.AddField(r.Context(), userID, formID, &field)
		switch {
		case errors.Is(err, model.ErrInvalidFieldDefinition):
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "add_field.definition", "%s", err)
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, "add_field", formID)
		case err != nil:
			httpx.LogInternalError(w, "db.insert_field", err)
		default:
			w.WriteHeader(http.StatusCreated)
			render.JSON(w, r, field)
		}
	}
}

func UpdateFormField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}
		fieldID, ok := urlParamId(w, r, "fieldID")
		if !ok {
			return
		}

		field := model.Field{}
		err := render.DecodeJSON(r.Body, &field)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		field.ID = fieldID

		err = app.Forms.UpdateField(r.Context(), userID, formID, &field)
		switch {
		case errors.Is(err, model.ErrInvalidFieldDefinition):
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "update_field.definition", "%s", err)
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, "update_field", fieldID)
		case err != nil:
			httpx.LogInternalError(w, "db.update_field", err)
		default:
			render.JSON(w, r, field)
		}
	}
}

func DeleteFormField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}
		fieldID, ok := urlParamId(w, r, "fieldID")
		if !ok {
			return
		}

		err := app.Forms.DeleteField(r.Context(), userID, formID, fieldID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "delete_field", fieldID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.delete_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetFormSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewareUserID(w, r)
		if !ok {
			return
		}
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		submissions, err := app.Forms.Submissions(r.Context(), userID, formID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_submissions", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"submissions": submissions,
		})
	}
}
