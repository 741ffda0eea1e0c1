package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrGroupNotFound is returned when no group matches a name.
var ErrGroupNotFound = errors.New("shopping group not found")

// ItemStore is the persistence the shopping list needs.
type ItemStore interface {
	List(ctx context.Context, userID string) ([]Item, error)
	Add(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id string, u ItemUpdate) error
	Delete(ctx context.Context, id string) error
}

// List is the shopping list of one signed-in user.
type List struct {
	userID string
	store  ItemStore
	view   *View
	logger *zap.Logger

	// One user action at a time.
	mu sync.Mutex
}

// NewList creates the shopping list service for userID.
func NewList(userID string, store ItemStore, logger *zap.Logger) *List {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &List{
		userID: userID,
		store:  store,
		view:   NewView(),
		logger: logger.With(zap.String("user_id", userID)),
	}
}

// Refresh reloads the items from the store and returns the grouped list.
func (l *List) Refresh(ctx context.Context) (Summary, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.reload(ctx); err != nil {
		return Summary{}, err
	}
	return l.view.Summary(), nil
}

// Summary returns the grouped list currently on screen without touching the
// store.
func (l *List) Summary() Summary {
	return l.view.Summary()
}

// Group loads the list and returns the group called name.
func (l *List) Group(ctx context.Context, name string) (GroupedItem, error) {
	summary, err := l.Refresh(ctx)
	if err != nil {
		return GroupedItem{}, err
	}
	g, ok := FindGroup(summary.Groups, name)
	if !ok {
		return GroupedItem{}, fmt.Errorf("%w: %q", ErrGroupNotFound, name)
	}
	return g, nil
}

// TogglePurchased sets every member of group to the opposite of the group's
// merged state, so a partly purchased group ends up fully purchased.
// Members that fail to update are logged and left for the reload to show.
func (l *List) TogglePurchased(ctx context.Context, group GroupedItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	newState := !group.Purchased
	members := make(map[string]struct{}, len(group.IDs))
	for _, id := range group.IDs {
		members[id] = struct{}{}
	}

	l.view.Apply(func(items []Item) []Item {
		for i := range items {
			if _, ok := members[items[i].ID]; ok {
				items[i].Purchased = newState
			}
		}
		return items
	})

	l.forEachMember(group.IDs, "update", func(id string) error {
		return l.store.Update(ctx, id, ItemUpdate{Purchased: &newState})
	})

	return l.reloadOrRevert(ctx)
}

// AddManualItem adds a user-entered item. A blank name adds nothing and
// returns a nil item.
func (l *List) AddManualItem(ctx context.Context, name string) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := Item{
		UserID:         l.userID,
		IngredientName: name,
		Category:       CategoryManual,
		Purchased:      false,
		Manual:         true,
	}

	l.view.Apply(func(items []Item) []Item {
		return append([]Item{item}, items...)
	})

	saved, err := l.store.Add(ctx, item)
	if err != nil {
		l.view.Revert()
		return nil, fmt.Errorf("failed to add manual item: %w", err)
	}

	if err := l.reloadOrRevert(ctx); err != nil {
		return &saved, err
	}
	return &saved, nil
}

// DeleteGroup removes every member of group.
func (l *List) DeleteGroup(ctx context.Context, group GroupedItem) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	members := make(map[string]struct{}, len(group.IDs))
	for _, id := range group.IDs {
		members[id] = struct{}{}
	}

	l.view.Apply(func(items []Item) []Item {
		kept := items[:0]
		for _, item := range items {
			if _, ok := members[item.ID]; !ok {
				kept = append(kept, item)
			}
		}
		return kept
	})

	l.forEachMember(group.IDs, "delete", func(id string) error {
		return l.store.Delete(ctx, id)
	})

	return l.reloadOrRevert(ctx)
}

// forEachMember runs op for every id concurrently and waits for all of them.
func (l *List) forEachMember(ids []string, opName string, op func(id string) error) {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if err := op(id); err != nil {
				l.logger.Warn("shopping item "+opName+" failed",
					zap.String("item_id", id),
					zap.Error(err),
				)
				return err
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (l *List) reload(ctx context.Context) error {
	items, err := l.store.List(ctx, l.userID)
	if err != nil {
		return fmt.Errorf("failed to load shopping items: %w", err)
	}
	l.view.Reconcile(items)
	return nil
}

func (l *List) reloadOrRevert(ctx context.Context) error {
	if err := l.reload(ctx); err != nil {
		l.view.Revert()
		return err
	}
	return nil
}
