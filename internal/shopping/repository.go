package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles persistence of shopping items.
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewRepository creates a new shopping item repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// List returns every item owned by userID, oldest first.
func (r *Repository) List(ctx context.Context, userID string) ([]Item, error) {
	items := []Item{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, user_id, ingredient_name, category, purchased, manual, meal_id, created_at
		FROM shopping_items
		WHERE user_id = ?
		ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping items for user %s: %w", userID, err)
	}
	return items, nil
}

// Add inserts item with a generated id and creation time and returns the
// stored record.
func (r *Repository) Add(ctx context.Context, item Item) (Item, error) {
	item.ID = uuid.NewString()
	item.CreatedAt = r.now().UnixMilli()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shopping_items (id, user_id, ingredient_name, category, purchased, manual, meal_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.IngredientName, item.Category, item.Purchased, item.Manual, item.MealID, item.CreatedAt)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert shopping item: %w", err)
	}
	return item, nil
}

// Update applies u to the item. A missing id is a no-op.
func (r *Repository) Update(ctx context.Context, id string, u ItemUpdate) error {
	setParts := []string{}
	args := []interface{}{}

	if u.Purchased != nil {
		setParts = append(setParts, "purchased = ?")
		args = append(args, *u.Purchased)
	}
	if len(setParts) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE shopping_items SET " + strings.Join(setParts, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update shopping item %s: %w", id, err)
	}
	return nil
}

// Delete removes one item. A missing id is a no-op.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM shopping_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete shopping item %s: %w", id, err)
	}
	return nil
}

// DeleteByMealID removes every item of userID owned by mealID.
func (r *Repository) DeleteByMealID(ctx context.Context, userID, mealID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM shopping_items WHERE meal_id = ? AND user_id = ?", mealID, userID); err != nil {
		return fmt.Errorf("failed to delete shopping items for meal %s: %w", mealID, err)
	}
	return nil
}
