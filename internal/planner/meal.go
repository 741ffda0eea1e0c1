package planner

import (
	"errors"
	"fmt"
	"strings"
)

// DateLayout is how meal dates are stored: a calendar day, no time or zone.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidMealType is returned for a meal type other than lunch or dinner.
	ErrInvalidMealType = errors.New("invalid meal type")
	// ErrInvalidDate is returned for a date not in yyyy-mm-dd form.
	ErrInvalidDate = errors.New("invalid meal date")
)

// MealType is the slot of the day a meal fills.
type MealType string

const (
	Lunch  MealType = "LUNCH"
	Dinner MealType = "DINNER"
)

// ParseMealType accepts "lunch" or "dinner" in any case.
func ParseMealType(s string) (MealType, error) {
	switch MealType(strings.ToUpper(strings.TrimSpace(s))) {
	case Lunch:
		return Lunch, nil
	case Dinner:
		return Dinner, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMealType, s)
}

// Meal is one planned dish. Meals are never edited in place: an edit deletes
// the old record and creates a new one.
type Meal struct {
	ID       string   `json:"id" db:"id"`
	UserID   string   `json:"user_id" db:"user_id"`
	Date     string   `json:"date" db:"date"`
	MealType MealType `json:"meal_type" db:"meal_type"`
	DishName string   `json:"dish_name" db:"dish_name"`
}
