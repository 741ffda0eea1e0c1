// Package planner owns the meal plan: which dish goes in each lunch and
// dinner slot, and the shopping items each meal brings with it.
package planner

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planifia/internal/ingredients"
	"planifia/internal/shopping"
)

// MealStore is the meal persistence the planner needs.
type MealStore interface {
	ListBetween(ctx context.Context, userID, from, to string) ([]Meal, error)
	Add(ctx context.Context, meal Meal) (Meal, error)
	Delete(ctx context.Context, userID, id string) error
}

// ItemStore is the shopping item persistence the planner needs.
type ItemStore interface {
	Add(ctx context.Context, item shopping.Item) (shopping.Item, error)
	DeleteByMealID(ctx context.Context, userID, mealID string) error
}

// SaveRequest describes a meal to save. EditingMealID names the meal being
// replaced, if any.
type SaveRequest struct {
	Date          string `json:"date"`
	MealType      string `json:"meal_type"`
	DishName      string `json:"dish_name"`
	EditingMealID string `json:"editing_meal_id,omitempty"`
}

// SaveResult is a saved meal and the shopping items generated for it.
type SaveResult struct {
	Meal     Meal            `json:"meal"`
	Eligible bool            `json:"eligible"`
	Items    []shopping.Item `json:"items"`
}

// DayPlan is one row of the week view.
type DayPlan struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	IsToday bool   `json:"is_today"`
	Lunch   *Meal  `json:"lunch,omitempty"`
	Dinner  *Meal  `json:"dinner,omitempty"`
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the planner clock.
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithLogger sets the planner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Planner is the meal planning engine for one signed-in user.
type Planner struct {
	userID   string
	meals    MealStore
	items    ItemStore
	resolver ingredients.Resolver
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger

	// One user action at a time.
	mu sync.Mutex
}

// NewPlanner creates a Planner. A nil resolver means no ingredients are ever
// generated.
func NewPlanner(userID string, meals MealStore, items ItemStore, resolver ingredients.Resolver, opts ...Option) *Planner {
	p := &Planner{
		userID:   userID,
		meals:    meals,
		items:    items,
		resolver: resolver,
		now:      time.Now,
		loc:      time.Local,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.With(zap.String("user_id", userID))
	return p
}

// Now returns the current time in the planner's zone.
func (p *Planner) Now() time.Time {
	return p.now().In(p.loc)
}

// WillGenerateIngredients reports whether saving a meal on date would
// generate shopping items right now.
func (p *Planner) WillGenerateIngredients(date string) (bool, error) {
	d, err := ParseDate(date, p.loc)
	if err != nil {
		return false, err
	}
	return IsEligible(d, p.Now()), nil
}

// SaveMeal creates a meal, replacing EditingMealID and any meal already in
// the same slot. A blank dish name saves nothing and returns a nil result.
//
// Meals dated in the current week get one shopping item per resolved
// ingredient. Resolver failures and failures retracting the replaced meals
// are logged and do not fail the save.
func (p *Planner) SaveMeal(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	dish := strings.TrimSpace(req.DishName)
	if dish == "" {
		return nil, nil
	}
	mealType, err := ParseMealType(req.MealType)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(strings.TrimSpace(req.Date), p.loc)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	replaced, err := p.slotOccupants(ctx, FormatDate(date), mealType)
	if err != nil {
		return nil, err
	}
	if req.EditingMealID != "" && !slices.Contains(replaced, req.EditingMealID) {
		replaced = append(replaced, req.EditingMealID)
	}
	p.retractAll(ctx, replaced)

	meal, err := p.meals.Add(ctx, Meal{
		UserID:   p.userID,
		Date:     FormatDate(date),
		MealType: mealType,
		DishName: dish,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}

	result := &SaveResult{Meal: meal, Items: []shopping.Item{}}
	if !IsEligible(date, p.Now()) {
		return result, nil
	}
	result.Eligible = true
	result.Items = p.generateItems(ctx, meal)
	return result, nil
}

// DeleteMeal removes a meal and every shopping item it owns. Deleting an
// unknown id is not an error.
func (p *Planner) DeleteMeal(ctx context.Context, mealID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retract(ctx, mealID)
}

// WeekPlan returns the seven days shown for weekOffset with their meals.
func (p *Planner) WeekPlan(ctx context.Context, weekOffset int) ([]DayPlan, error) {
	now := p.Now()
	days, err := WeekDays(now, weekOffset)
	if err != nil {
		return nil, err
	}

	meals, err := p.meals.ListBetween(ctx, p.userID, FormatDate(days[0]), FormatDate(days[6]))
	if err != nil {
		return nil, err
	}

	today := FormatDate(now)
	plan := make([]DayPlan, len(days))
	byDate := make(map[string]*DayPlan, len(days))
	for i, d := range days {
		plan[i] = DayPlan{
			Date:    FormatDate(d),
			Weekday: d.Weekday().String(),
			IsToday: FormatDate(d) == today,
		}
		byDate[plan[i].Date] = &plan[i]
	}

	for i := range meals {
		day, ok := byDate[meals[i].Date]
		if !ok {
			continue
		}
		meal := meals[i]
		switch meal.MealType {
		case Lunch:
			if day.Lunch == nil {
				day.Lunch = &meal
			}
		case Dinner:
			if day.Dinner == nil {
				day.Dinner = &meal
			}
		}
	}
	return plan, nil
}

func (p *Planner) slotOccupants(ctx context.Context, date string, mealType MealType) ([]string, error) {
	meals, err := p.meals.ListBetween(ctx, p.userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals for %s: %w", date, err)
	}
	ids := []string{}
	for _, m := range meals {
		if m.MealType == mealType {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// retractAll retracts every meal concurrently and waits for all of them.
// Failures are logged; a later reload shows any leftovers.
func (p *Planner) retractAll(ctx context.Context, mealIDs []string) {
	var g errgroup.Group
	for _, id := range mealIDs {
		g.Go(func() error {
			if err := p.retract(ctx, id); err != nil {
				p.logger.Warn("failed to retract replaced meal",
					zap.String("meal_id", id),
					zap.Error(err),
				)
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

// retract deletes the items owned by mealID, then the meal itself. Both
// deletes are scoped to the planner's user, so a foreign id is a no-op.
func (p *Planner) retract(ctx context.Context, mealID string) error {
	if err := p.items.DeleteByMealID(ctx, p.userID, mealID); err != nil {
		p.logger.Warn("failed to delete shopping items owned by meal",
			zap.String("meal_id", mealID),
			zap.Error(err),
		)
	}
	if err := p.meals.Delete(ctx, p.userID, mealID); err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", mealID, err)
	}
	return nil
}

func (p *Planner) generateItems(ctx context.Context, meal Meal) []shopping.Item {
	created := []shopping.Item{}
	if p.resolver == nil {
		return created
	}

	names, err := p.resolver.Resolve(ctx, meal.DishName)
	if err != nil {
		p.logger.Warn("ingredient resolution failed, saving meal without ingredients",
			zap.String("meal_id", meal.ID),
			zap.String("dish", meal.DishName),
			zap.Error(err),
		)
		return created
	}

	mealID := meal.ID
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		item, err := p.items.Add(ctx, shopping.Item{
			UserID:         p.userID,
			IngredientName: name,
			Category:       shopping.CategoryIngredients,
			Purchased:      false,
			Manual:         false,
			MealID:         &mealID,
		})
		if err != nil {
			p.logger.Warn("failed to add generated shopping item",
				zap.String("meal_id", meal.ID),
				zap.String("ingredient", name),
				zap.Error(err),
			)
			continue
		}
		created = append(created, item)
	}

	if len(created) == 0 {
		p.logger.Info("no ingredients generated for meal",
			zap.String("meal_id", meal.ID),
			zap.String("dish", meal.DishName),
		)
	}
	return created
}
