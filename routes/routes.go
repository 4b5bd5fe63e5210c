package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/instaforms/app"
	"github.com/mbolis/instaforms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/auth/register", Register(app))
	api.Post("/auth/login", Login(app))
	api.Post("/auth/refresh", Refresh(app))
	api.With(middlewares.Authenticated(app.Config)).
		Post("/auth/logout", Logout(app))

	// owner surface
	api.Route("/forms", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.Config))

		r.Post("/", CreateForm(app))
		r.Get("/", ListForms(app))
		r.Get(`/{id:^\d+$}`, GetFormById(app))
		r.Put(`/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/{id:^\d+$}`, DeleteForm(app))

		r.Post(`/{id:^\d+$}/fields`, AddFormField(app))
		r.Put(`/{id:^\d+$}/fields/{fieldID:^\d+$}`, UpdateFormField(app))
		r.Delete(`/{id:^\d+$}/fields/{fieldID:^\d+$}`, DeleteFormField(app))

		r.Get(`/{id:^\d+$}/submissions`, GetFormSubmissions(app))
	})

	// public surface: active forms only, no identity
	api.Get("/public/forms", PublicListForms(app))
	api.Get(`/public/forms/{id:^\d+$}`, PublicGetFormById(app))
	api.Post(`/public/forms/{id:^\d+$}/submissions`, PublicSubmitForm(app))

	return api
}
