package model

import (
	"database/sql"

	"github.com/username/tradelens/backend/src/models"
)

func CreateAsset(db *sql.DB, a *models.Asset) error {
	res, err := db.Exec(`
		INSERT INTO assets (user_id, name, is_stock, ticker, shares, current_price, balance, apy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.IsStock, a.Ticker, a.Shares, a.CurrentPrice, a.Balance, a.APY)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// GetAssetsByUser lists a user's assets, stocks before cash accounts, each
// group alphabetical by name.
func GetAssetsByUser(db *sql.DB, userID int64) ([]models.Asset, error) {
	rows, err := db.Query(`
		SELECT id, user_id, name, is_stock, ticker, shares, current_price, balance, apy
		FROM assets
		WHERE user_id = ?
		ORDER BY is_stock DESC, name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var a models.Asset
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.IsStock, &a.Ticker, &a.Shares, &a.CurrentPrice, &a.Balance, &a.APY); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func UpdateAsset(db *sql.DB, a *models.Asset) error {
	res, err := db.Exec(`
		UPDATE assets SET name = ?, is_stock = ?, ticker = ?, shares = ?, current_price = ?, balance = ?, apy = ?
		WHERE id = ? AND user_id = ?`,
		a.Name, a.IsStock, a.Ticker, a.Shares, a.CurrentPrice, a.Balance, a.APY, a.ID, a.UserID)
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

func DeleteAsset(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM assets WHERE id = ? AND user_id = ?`, id, userID)
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

func UpdateAssetPrice(db *sql.DB, userID int64, ticker string, price float64) error {
	_, err := db.Exec(`
		UPDATE assets SET current_price = ?
		WHERE user_id = ? AND ticker = ? AND is_stock = 1`, price, userID, ticker)
	return err
}
