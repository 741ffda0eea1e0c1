package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MealRepository handles persistence of meals.
type MealRepository struct {
	db *sqlx.DB
}

// NewMealRepository creates a new MealRepository.
func NewMealRepository(db *sqlx.DB) *MealRepository {
	return &MealRepository{db: db}
}

// ListBetween returns the meals of userID dated from..to inclusive.
func (r *MealRepository) ListBetween(ctx context.Context, userID, from, to string) ([]Meal, error) {
	meals := []Meal{}
	err := r.db.SelectContext(ctx, &meals, `
		SELECT id, user_id, date, meal_type, dish_name
		FROM meals
		WHERE user_id = ? AND date BETWEEN ? AND ?
		ORDER BY date, meal_type DESC, rowid`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals for user %s between %s and %s: %w", userID, from, to, err)
	}
	return meals, nil
}

// Add inserts meal with a generated id and returns the stored record.
func (r *MealRepository) Add(ctx context.Context, meal Meal) (Meal, error) {
	meal.ID = uuid.NewString()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO meals (id, user_id, date, meal_type, dish_name)
		VALUES (:id, :user_id, :date, :meal_type, :dish_name)`, meal)
	if err != nil {
		return Meal{}, fmt.Errorf("failed to insert meal: %w", err)
	}
	return meal, nil
}

// Delete removes a meal of userID. A missing id, or one owned by another
// user, is a no-op.
func (r *MealRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM meals WHERE id = ? AND user_id = ?", id, userID); err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", id, err)
	}
	return nil
}
