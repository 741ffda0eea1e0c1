// Package ingredients turns a dish name into the ingredient names that go on
// the shopping list.
package ingredients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a resolver has no answer for a dish.
var ErrNotFound = errors.New("no ingredients found for dish")

// Resolver maps a dish name to an ordered list of ingredient names.
type Resolver interface {
	Resolve(ctx context.Context, dishName string) ([]string, error)
}

// FallbackResolver asks each resolver in turn and returns the first
// non-empty answer.
type FallbackResolver struct {
	resolvers []Resolver
	logger    *zap.Logger
}

// NewFallbackResolver chains resolvers in order. Nil entries are skipped.
func NewFallbackResolver(logger *zap.Logger, resolvers ...Resolver) *FallbackResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	chain := make([]Resolver, 0, len(resolvers))
	for _, r := range resolvers {
		if r != nil {
			chain = append(chain, r)
		}
	}
	return &FallbackResolver{resolvers: chain, logger: logger}
}

// Resolve returns the first non-empty list. When every resolver fails the
// errors are joined.
func (f *FallbackResolver) Resolve(ctx context.Context, dishName string) ([]string, error) {
	var errs []error
	for i, r := range f.resolvers {
		names, err := r.Resolve(ctx, dishName)
		if err != nil {
			f.logger.Debug("ingredient resolver failed, trying next",
				zap.Int("position", i),
				zap.String("dish", dishName),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		if names = clean(names); len(names) > 0 {
			return names, nil
		}
	}
	if len(errs) == len(f.resolvers) && len(errs) > 0 {
		return nil, fmt.Errorf("all ingredient resolvers failed: %w", errors.Join(errs...))
	}
	return []string{}, nil
}

// clean trims names and drops blanks and case-insensitive duplicates.
func clean(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}
