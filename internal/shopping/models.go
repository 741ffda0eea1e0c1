package shopping

// Categories written by the application. The category is informational only.
const (
	CategoryIngredients = "Ingredientes"
	CategoryManual      = "Manual"
)

// Item is one raw shopping-list entry.
//
// An item with a MealID is owned by that meal and disappears with it. Manual
// items have no MealID and are never removed automatically.
type Item struct {
	ID             string  `json:"id" db:"id"`
	UserID         string  `json:"user_id" db:"user_id"`
	IngredientName string  `json:"ingredient_name" db:"ingredient_name"`
	Category       string  `json:"category" db:"category"`
	Purchased      bool    `json:"purchased" db:"purchased"`
	Manual         bool    `json:"manual" db:"manual"`
	MealID         *string `json:"meal_id" db:"meal_id"`
	CreatedAt      int64   `json:"created_at" db:"created_at"` // epoch ms
}

// ItemUpdate carries the fields to change; nil fields are left alone.
type ItemUpdate struct {
	Purchased *bool
}

// Summary is what a shopping-list screen renders.
type Summary struct {
	Groups    []GroupedItem `json:"groups"`
	Purchased int           `json:"purchased"`
	Total     int           `json:"total"`
	Tentative bool          `json:"tentative"`
}

func summarize(groups []GroupedItem, tentative bool) Summary {
	purchased := 0
	for _, g := range groups {
		if g.Purchased {
			purchased++
		}
	}
	return Summary{
		Groups:    groups,
		Purchased: purchased,
		Total:     len(groups),
		Tentative: tentative,
	}
}
