package model

import (
	"database/sql"

	"github.com/username/tradelens/backend/src/models"
)

func CreateTrade(db *sql.DB, t *models.Trade) error {
	res, err := db.Exec(`
		INSERT INTO trades (user_id, date, ticker, realized_pnl, percent_diff, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Date, t.Ticker, t.RealizedPnl, t.PercentDiff, t.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func UpdateTrade(db *sql.DB, t *models.Trade) error {
	res, err := db.Exec(`
		UPDATE trades SET date = ?, ticker = ?, realized_pnl = ?, percent_diff = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		t.Date, t.Ticker, t.RealizedPnl, t.PercentDiff, t.Notes, t.ID, t.UserID)
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

func DeleteTrade(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
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
