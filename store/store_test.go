package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"testing"

	"github.com/mbolis/instaforms/config"
	"github.com/mbolis/instaforms/database"
	"github.com/mbolis/instaforms/model"
	"github.com/stretchr/testify/require"
)

var reDBName = regexp.MustCompile(`\W+`)

// newTestDB opens a migrated in-memory database, one per test. The
// shared-cache DSN keeps the pool's connections on the same memory DB.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := reDBName.ReplaceAllString(t.Name(), "_")
	db, err := database.Open(config.Config{
		DBUrl: fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) int {
	t.Helper()
	var id int
	err := db.QueryRow(`
		INSERT INTO user (email, password_hash) VALUES (?, 'not-a-real-hash')
		RETURNING id`,
		email,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// feedbackForm is the canonical two-field test form: a required Name and
// an optional numeric Age.
func feedbackForm() *model.Form {
	return &model.Form{
		Title:       "Feedback",
		Description: "tell us what you think",
		Active:      true,
		Fields: []model.Field{
			{Label: "Name", Type: model.TypeText, Required: true, Order: 1},
			{Label: "Age", Type: model.TypeNumber, Order: 2},
		},
	}
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	require.NoError(t, err)
	return n
}
