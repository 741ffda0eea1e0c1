package ingredients

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"planifia/internal/config"
	"planifia/internal/llm"
	"planifia/internal/shared"
)

type mockTextGenerator struct {
	content string
	err     error
	prompts []string
}

func (m *mockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return llm.ContentResponse{}, m.err
	}
	return llm.ContentResponse{
		Content: m.content,
		Usage:   shared.TokenUsage{PromptTokens: 40, CompletionTokens: 10, TotalTokens: 50, Model: "mock"},
	}, nil
}

type mockRecorder struct {
	metas []shared.AgentMeta
}

func (m *mockRecorder) RecordMeta(ctx context.Context, meta shared.AgentMeta) error {
	m.metas = append(m.metas, meta)
	return nil
}

type stubResolver struct {
	names []string
	err   error
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context, dishName string) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestLLMResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("ParsesAndRecordsUsage", func(t *testing.T) {
		gen := &mockTextGenerator{content: `{"ingredients": [" arroz ", "pollo", "", "Arroz", "azafrán"]}`}
		rec := &mockRecorder{}
		r := NewLLMResolver(gen, rec, nil)

		names, err := r.Resolve(ctx, "  Paella valenciana ")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		want := []string{"arroz", "pollo", "azafrán"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("Expected %v, got %v", want, names)
		}
		if !strings.Contains(gen.prompts[0], `"Paella valenciana"`) {
			t.Errorf("Expected trimmed dish in prompt, got:\n%s", gen.prompts[0])
		}
		if len(rec.metas) != 1 || rec.metas[0].AgentName != agentName || rec.metas[0].Usage.TotalTokens != 50 {
			t.Errorf("Unexpected recorded metrics: %+v", rec.metas)
		}
	})

	t.Run("CodeFence", func(t *testing.T) {
		gen := &mockTextGenerator{content: "```json\n{\"ingredients\": [\"huevos\"]}\n```"}
		names, err := NewLLMResolver(gen, nil, nil).Resolve(ctx, "tortilla")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"huevos"}) {
			t.Errorf("Unexpected names: %v", names)
		}
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		gen := &mockTextGenerator{content: "arroz, pollo"}
		if _, err := NewLLMResolver(gen, nil, nil).Resolve(ctx, "paella"); err == nil {
			t.Fatal("Expected parse error")
		}
	})

	t.Run("GeneratorError", func(t *testing.T) {
		gen := &mockTextGenerator{err: errors.New("quota exceeded")}
		if _, err := NewLLMResolver(gen, nil, nil).Resolve(ctx, "paella"); err == nil {
			t.Fatal("Expected generator error")
		}
	})

	t.Run("Limit", func(t *testing.T) {
		many := make([]string, 0, 20)
		for i := 0; i < 20; i++ {
			many = append(many, `"i`+string(rune('a'+i))+`"`)
		}
		gen := &mockTextGenerator{content: `{"ingredients": [` + strings.Join(many, ",") + `]}`}
		names, err := NewLLMResolver(gen, nil, nil).Resolve(ctx, "buffet")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if len(names) != maxIngredients {
			t.Errorf("Expected %d names, got %d", maxIngredients, len(names))
		}
	})
}

func TestDictionaryResolver(t *testing.T) {
	ctx := context.Background()
	dict, err := NewDictionaryResolver("")
	if err != nil {
		t.Fatalf("Failed to load dictionary: %v", err)
	}

	t.Run("ExactMatch", func(t *testing.T) {
		names, err := dict.Resolve(ctx, "  Tortilla de  PATATAS ")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"patatas", "huevos", "cebolla", "aceite de oliva"}) {
			t.Errorf("Unexpected names: %v", names)
		}
	})

	t.Run("LongestContainedKey", func(t *testing.T) {
		names, err := dict.Resolve(ctx, "Paella de marisco del domingo")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if names[1] != "gambas" {
			t.Errorf("Expected the seafood paella entry, got %v", names)
		}
	})

	t.Run("WordBoundary", func(t *testing.T) {
		if _, err := dict.Resolve(ctx, "tacosalada"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		if _, err := dict.Resolve(ctx, "sushi"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dict.yaml")
		content := "sushi:\n  - arroz\n  - alga nori\n  - salmón\npaella:\n  - arroz\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		custom, err := NewDictionaryResolver(path)
		if err != nil {
			t.Fatalf("Failed to load override: %v", err)
		}
		if custom.Len() != dict.Len()+1 {
			t.Errorf("Expected one extra dish, got %d vs %d", custom.Len(), dict.Len())
		}
		names, _ := custom.Resolve(ctx, "Paella")
		if !reflect.DeepEqual(names, []string{"arroz"}) {
			t.Errorf("Expected override to replace paella, got %v", names)
		}
	})

	t.Run("MissingOverride", func(t *testing.T) {
		if _, err := NewDictionaryResolver(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Expected error for missing override file")
		}
	})
}

func TestFallbackResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstNonEmptyWins", func(t *testing.T) {
		failing := &stubResolver{err: errors.New("down")}
		empty := &stubResolver{names: []string{" "}}
		good := &stubResolver{names: []string{"tomate"}}
		never := &stubResolver{names: []string{"x"}}

		names, err := NewFallbackResolver(nil, failing, nil, empty, good, never).Resolve(ctx, "gazpacho")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !reflect.DeepEqual(names, []string{"tomate"}) {
			t.Errorf("Unexpected names: %v", names)
		}
		if never.calls != 0 {
			t.Error("Expected resolution to stop at the first answer")
		}
	})

	t.Run("AllEmpty", func(t *testing.T) {
		names, err := NewFallbackResolver(nil, &stubResolver{}, &stubResolver{err: ErrNotFound}).Resolve(ctx, "x")
		if err != nil || len(names) != 0 {
			t.Errorf("Expected empty result without error, got %v, %v", names, err)
		}
	})

	t.Run("AllFail", func(t *testing.T) {
		_, err := NewFallbackResolver(nil, &stubResolver{err: errors.New("a")}, &stubResolver{err: ErrNotFound}).Resolve(ctx, "x")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected joined error containing ErrNotFound, got %v", err)
		}
	})
}

func TestCachedResolver(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "ingredients.json")

	next := &stubResolver{names: []string{"lentejas", "chorizo"}}
	c, err := NewCachedResolver(next, path, nil)
	if err != nil {
		t.Fatalf("NewCachedResolver failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		names, err := c.Resolve(ctx, "Lentejas")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if len(names) != 2 {
			t.Fatalf("Unexpected names: %v", names)
		}
	}
	if next.calls != 1 {
		t.Errorf("Expected one call to the wrapped resolver, got %d", next.calls)
	}

	reloaded, err := NewCachedResolver(&stubResolver{err: errors.New("offline")}, path, nil)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Errorf("Expected 1 cached dish after reload, got %d", reloaded.Len())
	}
	if names, err := reloaded.Resolve(ctx, "  lentejas "); err != nil || len(names) != 2 {
		t.Errorf("Expected cache hit after reload, got %v, %v", names, err)
	}

	t.Run("ErrorsNotCached", func(t *testing.T) {
		failing := &stubResolver{err: errors.New("boom")}
		c, _ := NewCachedResolver(failing, filepath.Join(t.TempDir(), "c.json"), nil)
		c.Resolve(ctx, "x")
		c.Resolve(ctx, "x")
		if failing.calls != 2 {
			t.Errorf("Expected failures to be retried, got %d calls", failing.calls)
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("DictionaryOnly", func(t *testing.T) {
		r, err := NewFromConfig(&config.Config{LLMProvider: config.ProviderNone}, nil, nil, nil)
		if err != nil {
			t.Fatalf("NewFromConfig failed: %v", err)
		}
		names, err := r.Resolve(ctx, "gazpacho")
		if err != nil || len(names) == 0 {
			t.Errorf("Expected dictionary answer, got %v, %v", names, err)
		}
	})

	t.Run("ModelFailsFallsBackToDictionary", func(t *testing.T) {
		gen := &mockTextGenerator{err: errors.New("down")}
		r, err := NewFromConfig(&config.Config{LLMProvider: config.ProviderGroq}, gen, nil, nil)
		if err != nil {
			t.Fatalf("NewFromConfig failed: %v", err)
		}
		names, err := r.Resolve(ctx, "lentejas")
		if err != nil || names[0] != "lentejas" {
			t.Errorf("Expected dictionary fallback, got %v, %v", names, err)
		}
		if len(gen.prompts) != 1 {
			t.Errorf("Expected the model to be tried first, got %d calls", len(gen.prompts))
		}
	})
}
