package model

import (
	"database/sql"
	"testing"

	"github.com/username/tradelens/backend/src/models"
	_ "modernc.org/sqlite"
)

func openPrefsDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE user_preferences (
			user_id INTEGER PRIMARY KEY,
			sort_order TEXT NOT NULL DEFAULT 'date_desc',
			calendar_mode TEXT NOT NULL DEFAULT 'dollar',
			r_unit REAL NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		t.Fatalf("creating user_preferences table: %v", err)
	}
	return db
}

func TestPreferencesDefaultsWhenUnsaved(t *testing.T) {
	store := NewPreferencesStore(openPrefsDB(t))

	prefs, err := store.Load(99)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := models.DefaultPreferences()
	if prefs != want {
		t.Errorf("Load for unsaved user = %+v, want defaults %+v", prefs, want)
	}
}

func TestPreferencesSaveLoadRoundTrip(t *testing.T) {
	store := NewPreferencesStore(openPrefsDB(t))

	saved := models.DisplayPreferences{
		SortOrder:    "date_asc",
		CalendarMode: models.ModeRMultiple,
		RUnit:        50,
	}
	if err := store.Save(7, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != saved {
		t.Errorf("Load = %+v, want %+v", loaded, saved)
	}

	// Second save upserts rather than failing on the primary key.
	saved.CalendarMode = models.ModePercent
	saved.RUnit = 25
	if err := store.Save(7, saved); err != nil {
		t.Fatalf("Save (upsert): %v", err)
	}
	loaded, err = store.Load(7)
	if err != nil {
		t.Fatalf("Load after upsert: %v", err)
	}
	if loaded != saved {
		t.Errorf("Load after upsert = %+v, want %+v", loaded, saved)
	}
}
