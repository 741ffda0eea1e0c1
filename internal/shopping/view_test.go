package shopping

import "testing"

func TestView(t *testing.T) {
	t.Run("ApplyIsTentative", func(t *testing.T) {
		v := NewView()
		v.Reconcile([]Item{item("1", "pan", false, false)})

		v.Apply(func(items []Item) []Item {
			items[0].Purchased = true
			return items
		})

		s := v.Summary()
		if !s.Tentative {
			t.Error("Expected summary to be tentative after Apply")
		}
		if s.Purchased != 1 || s.Total != 1 {
			t.Errorf("Expected 1/1 purchased, got %d/%d", s.Purchased, s.Total)
		}
	})

	t.Run("RevertRestoresConfirmed", func(t *testing.T) {
		v := NewView()
		v.Reconcile([]Item{item("1", "pan", false, false)})
		v.Apply(func(items []Item) []Item { return items[:0] })

		if len(v.Items()) != 0 {
			t.Fatal("Expected tentative removal to hide the item")
		}

		v.Revert()
		items := v.Items()
		if len(items) != 1 || items[0].ID != "1" {
			t.Errorf("Expected confirmed item back, got %+v", items)
		}
		if v.Summary().Tentative {
			t.Error("Expected Revert to clear the tentative flag")
		}
	})

	t.Run("ReconcileReplacesTentative", func(t *testing.T) {
		v := NewView()
		v.Apply(func(items []Item) []Item {
			return append(items, item("tmp", "leche", false, true))
		})
		v.Reconcile([]Item{item("real", "leche", false, true)})

		items := v.Items()
		if len(items) != 1 || items[0].ID != "real" {
			t.Errorf("Expected store snapshot, got %+v", items)
		}
	})

	t.Run("ItemsReturnsCopy", func(t *testing.T) {
		v := NewView()
		v.Reconcile([]Item{item("1", "pan", false, false)})
		items := v.Items()
		items[0].IngredientName = "changed"

		if v.Items()[0].IngredientName != "pan" {
			t.Error("Expected view to be unaffected by caller mutation")
		}
	})
}
