package models

// DisplayPreferences carries the user's dashboard display settings. They are
// passed explicitly into the aggregator/renderer boundary instead of being
// read from ambient state; persistence happens behind PreferencesStore.
type DisplayPreferences struct {
	SortOrder    string      `json:"sort_order"`
	CalendarMode DisplayMode `json:"calendar_mode"`
	RUnit        float64     `json:"r_unit"`
}

// DefaultPreferences returns the preferences used before a user saves any.
func DefaultPreferences() DisplayPreferences {
	return DisplayPreferences{
		SortOrder:    "date_desc",
		CalendarMode: ModeDollar,
		RUnit:        0,
	}
}

// PreferencesStore loads and saves display preferences at the edge of the
// aggregation layer.
type PreferencesStore interface {
	Load(userID int64) (DisplayPreferences, error)
	Save(userID int64, prefs DisplayPreferences) error
}
