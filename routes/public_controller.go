package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/instaforms/app"
	"github.com/mbolis/instaforms/httpx"
	"github.com/mbolis/instaforms/log"
	"github.com/mbolis/instaforms/store"
	"github.com/mbolis/instaforms/validation"
)

func PublicListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.ListActive(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		form, err := app.Forms.GetActive(r.Context(), formID)
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

func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, ok := urlParamId(w, r, "id")
		if !ok {
			return
		}

		var payload struct {
			Responses []validation.Entry `json:"responses"`
		}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		// inactive forms are invisible here, same as missing ones
		form, err := app.Forms.GetActive(r.Context(), formID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		accepted, verrs := validation.Validate(form, payload.Responses)
		if verrs != nil {
			log.Debugf("submit_form.validate: %s", verrs)
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, map[string]any{
				"errors": verrs,
			})
			return
		}

		submissionID, err := app.Submissions.Create(r.Context(), formID, clientIP(r), accepted)
		switch {
		case errors.Is(err, store.ErrNotFound):
			httpx.LogNotFound(w, "submit_form", formID)
		case errors.Is(err, store.ErrFormInactive):
			httpx.LogStatusMsg(w, http.StatusForbidden, log.DebugLevel, "submit_form.inactive",
				"form is not accepting submissions")
		case errors.Is(err, store.ErrSubmissionFailed):
			// validation passed but the commit lost a race; nothing was
			// stored, the client may retry as is
			httpx.LogStatusMsg(w, http.StatusInternalServerError, log.WarnLevel, "submit_form.failed",
				"submission could not be stored, please retry")
		case err != nil:
			httpx.LogInternalError(w, "db.insert_submission", err)
		default:
			w.WriteHeader(http.StatusCreated)
			render.JSON(w, r, map[string]any{
				"id":      submissionID,
				"message": "form submitted successfully",
			})
		}
	}
}
