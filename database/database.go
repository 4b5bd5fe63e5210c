package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mbolis/instaforms/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	// cascade deletes and commit-time field checks rely on enforced FKs;
	// the DSN parameter applies to every pooled connection, a one-off
	// PRAGMA would not
	dsn := cfg.DBUrl
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err = sql.Open("sqlite3", dsn)
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}
