package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/mbolis/instaforms/config"
	"github.com/mbolis/instaforms/httpx"
	"github.com/mbolis/instaforms/store"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Forms       *store.Forms
	Submissions *store.Submissions
}

func New(db *sql.DB, cfg config.Config) App {
	return App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Forms:        store.NewForms(db),
		Submissions:  store.NewSubmissions(db),
	}
}
