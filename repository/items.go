package repository

import (
	"context"
	"fmt"
	"time"

	"liist/common"
	"liist/models"

	"github.com/jmoiron/sqlx"
)

type ItemRepository struct {
	db *sqlx.DB
}

func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts item and fills in its store-assigned id.
func (r *ItemRepository) Create(ctx context.Context, item *models.ListItem) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`INSERT INTO list_items (owner_id, text, updated_at)
			VALUES (?, ?, ?) RETURNING id`)
		if err := tx.QueryRowxContext(ctx, query, item.OwnerID, item.Text, item.UpdatedAt).Scan(&item.ID); err != nil {
			return storeErr("create item", err)
		}
		return nil
	})
}

// ListByOwner returns the owner's items, oldest update first.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.ListItem, error) {
	items := []models.ListItem{}
	query := r.db.Rebind(`SELECT id, owner_id, text, updated_at FROM list_items
		WHERE owner_id = ? ORDER BY updated_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, storeErr("list items", err)
	}
	return items, nil
}

// GetOwned returns the item only if ownerID owns it.
func (r *ItemRepository) GetOwned(ctx context.Context, ownerID string, id int64) (*models.ListItem, error) {
	var item models.ListItem
	query := r.db.Rebind(`SELECT id, owner_id, text, updated_at FROM list_items
		WHERE id = ? AND owner_id = ?`)
	if err := r.db.GetContext(ctx, &item, query, id, ownerID); err != nil {
		return nil, storeErr("get item", err)
	}
	return &item, nil
}

// UpdateText rewrites an owned item's text and timestamp. Items that do not
// exist and items owned by someone else are both common.ErrNotFound.
func (r *ItemRepository) UpdateText(ctx context.Context, ownerID string, id int64, text string, updatedAt time.Time) (*models.ListItem, error) {
	var item models.ListItem
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`UPDATE list_items SET text = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`)
		result, err := tx.ExecContext(ctx, query, text, updatedAt, id, ownerID)
		if err != nil {
			return storeErr("update item", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return storeErr("update item", err)
		}
		if n == 0 {
			return fmt.Errorf("update item %d: %w", id, common.ErrNotFound)
		}

		query = tx.Rebind(`SELECT id, owner_id, text, updated_at FROM list_items WHERE id = ?`)
		if err := tx.GetContext(ctx, &item, query, id); err != nil {
			return storeErr("reload item", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an owned item under the same ownership rule as UpdateText.
func (r *ItemRepository) Delete(ctx context.Context, ownerID string, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`DELETE FROM list_items WHERE id = ? AND owner_id = ?`)
		result, err := tx.ExecContext(ctx, query, id, ownerID)
		if err != nil {
			return storeErr("delete item", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return storeErr("delete item", err)
		}
		if n == 0 {
			return fmt.Errorf("delete item %d: %w", id, common.ErrNotFound)
		}
		return nil
	})
}
