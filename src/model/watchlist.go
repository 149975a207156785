package model

import (
	"database/sql"

	"github.com/username/tradelens/backend/src/models"
)

func CreateWatchlistItem(db *sql.DB, w *models.WatchlistItem) error {
	res, err := db.Exec(`
		INSERT INTO watchlist_items (user_id, ticker, target_price, notes)
		VALUES (?, ?, ?, ?)`, w.UserID, w.Ticker, w.TargetPrice, w.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = id
	return nil
}

func GetWatchlistByUser(db *sql.DB, userID int64) ([]models.WatchlistItem, error) {
	rows, err := db.Query(`
		SELECT id, user_id, ticker, target_price, notes, created_at
		FROM watchlist_items
		WHERE user_id = ?
		ORDER BY ticker ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.WatchlistItem{}
	for rows.Next() {
		var w models.WatchlistItem
		var notes sql.NullString
		if err := rows.Scan(&w.ID, &w.UserID, &w.Ticker, &w.TargetPrice, &notes, &w.CreatedAt); err != nil {
			return nil, err
		}
		w.Notes = notes.String
		items = append(items, w)
	}
	return items, rows.Err()
}

func DeleteWatchlistItem(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM watchlist_items WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
