package shopping

import "sync"

// View holds the items a screen is showing. A local change can be applied
// tentatively so it shows up at once; Reconcile then replaces it with what
// the store returned, and Revert drops it when the reload fails.
type View struct {
	mu        sync.RWMutex
	confirmed []Item
	current   []Item
	tentative bool
}

// NewView creates an empty view.
func NewView() *View {
	return &View{}
}

// Apply runs fn on a copy of the visible items and shows the result until
// the next Reconcile or Revert.
func (v *View) Apply(fn func([]Item) []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = fn(cloneItems(v.current))
	v.tentative = true
}

// Reconcile installs the authoritative snapshot from the store.
func (v *View) Reconcile(items []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.confirmed = cloneItems(items)
	v.current = cloneItems(items)
	v.tentative = false
}

// Revert discards any tentative change.
func (v *View) Revert() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = cloneItems(v.confirmed)
	v.tentative = false
}

// Items returns a copy of the visible items.
func (v *View) Items() []Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneItems(v.current)
}

// Summary groups the visible items.
func (v *View) Summary() Summary {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return summarize(GroupItems(v.current), v.tentative)
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
