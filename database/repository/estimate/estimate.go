package estimate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/thrasher-corp/feeestimator/database"
	"github.com/thrasher-corp/feeestimator/log"
)

const (
	insertQuery = `INSERT INTO fee_estimate
	(id, item_id, price, currency, total_fee, selling_price, shipping, status, request_identifier, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectByItemQuery = `SELECT id, item_id, price, currency, total_fee, selling_price, shipping, status, request_identifier, created_at
	FROM fee_estimate WHERE item_id = ? ORDER BY created_at DESC, id LIMIT ?`
)

// Insert saves estimates to the database in a single transaction. Records
// without an ID are assigned a fresh UUID.
func Insert(ctx context.Context, db *database.Instance, estimates ...Data) error {
	for i := range estimates {
		if err := estimates[i].validate(); err != nil {
			return err
		}
	}
	sqlDB, err := db.GetSQL()
	if err != nil {
		return err
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginTx %w", err)
	}
	defer func() {
		if err != nil {
			if errRB := tx.Rollback(); errRB != nil {
				log.Errorf(log.DatabaseMgr, "Insert tx.Rollback %v", errRB)
			}
		}
	}()

	query := db.Rebind(insertQuery)
	for i := range estimates {
		if estimates[i].ID == "" {
			var freshUUID uuid.UUID
			freshUUID, err = uuid.NewV4()
			if err != nil {
				return err
			}
			estimates[i].ID = freshUUID.String()
		}
		if estimates[i].CreatedAt.IsZero() {
			estimates[i].CreatedAt = time.Now()
		}
		estimates[i].CreatedAt = estimates[i].CreatedAt.UTC()
		db.LogQuery(query, estimates[i].ID, estimates[i].ItemID)
		_, err = tx.ExecContext(ctx, query,
			estimates[i].ID,
			estimates[i].ItemID,
			estimates[i].Price,
			strings.ToUpper(estimates[i].Currency),
			estimates[i].TotalFee,
			estimates[i].SellingPrice,
			estimates[i].Shipping,
			estimates[i].Status,
			estimates[i].RequestIdentifier,
			estimates[i].CreatedAt)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// GetByItem returns the most recent estimates stored for itemID, newest
// first. A non-positive limit uses the default.
func GetByItem(ctx context.Context, db *database.Instance, itemID string, limit int) ([]Data, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, ErrItemIDRequired
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	sqlDB, err := db.GetSQL()
	if err != nil {
		return nil, err
	}

	query := db.Rebind(selectByItemQuery)
	db.LogQuery(query, itemID, limit)
	rows, err := sqlDB.QueryContext(ctx, query, itemID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resp []Data
	for rows.Next() {
		var d Data
		if err := rows.Scan(&d.ID,
			&d.ItemID,
			&d.Price,
			&d.Currency,
			&d.TotalFee,
			&d.SellingPrice,
			&d.Shipping,
			&d.Status,
			&d.RequestIdentifier,
			&d.CreatedAt); err != nil {
			return nil, err
		}
		d.CreatedAt = d.CreatedAt.UTC()
		resp = append(resp, d)
	}
	return resp, rows.Err()
}

func (d *Data) validate() error {
	if strings.TrimSpace(d.ItemID) == "" {
		return ErrItemIDRequired
	}
	if len(d.Currency) != 3 {
		return fmt.Errorf("%w: %q", errCurrencyCode, d.Currency)
	}
	return nil
}
