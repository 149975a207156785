package model

import (
	"database/sql"

	"github.com/username/tradelens/backend/src/models"
)

// sqlitePreferencesStore keeps one preferences row per user, upserted on
// save. Load falls back to defaults for users who never saved.
type sqlitePreferencesStore struct {
	db *sql.DB
}

func NewPreferencesStore(db *sql.DB) models.PreferencesStore {
	return &sqlitePreferencesStore{db: db}
}

func (s *sqlitePreferencesStore) Load(userID int64) (models.DisplayPreferences, error) {
	prefs := models.DefaultPreferences()
	err := s.db.QueryRow(`
		SELECT sort_order, calendar_mode, r_unit
		FROM user_preferences WHERE user_id = ?`, userID).
		Scan(&prefs.SortOrder, &prefs.CalendarMode, &prefs.RUnit)
	if err == sql.ErrNoRows {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.DefaultPreferences(), err
	}
	if !prefs.CalendarMode.Valid() {
		prefs.CalendarMode = models.ModeDollar
	}
	return prefs, nil
}

func (s *sqlitePreferencesStore) Save(userID int64, prefs models.DisplayPreferences) error {
	_, err := s.db.Exec(`
		INSERT INTO user_preferences (user_id, sort_order, calendar_mode, r_unit, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			sort_order = excluded.sort_order,
			calendar_mode = excluded.calendar_mode,
			r_unit = excluded.r_unit,
			updated_at = CURRENT_TIMESTAMP`,
		userID, prefs.SortOrder, prefs.CalendarMode, prefs.RUnit)
	return err
}
