package ingredients

import (
	"go.uber.org/zap"

	"planifia/internal/config"
	"planifia/internal/llm"
)

// NewFromConfig assembles the resolver chain: the model (when textGen is not
// nil), optionally cached on disk, then the dictionary.
func NewFromConfig(cfg *config.Config, textGen llm.TextGenerator, metrics MetricsRecorder, logger *zap.Logger) (Resolver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dict, err := NewDictionaryResolver(cfg.IngredientDictionaryPath)
	if err != nil {
		return nil, err
	}

	var primary Resolver
	if textGen != nil {
		primary = NewLLMResolver(textGen, metrics, logger)
		if cfg.IngredientCachePath != "" {
			cached, err := NewCachedResolver(primary, cfg.IngredientCachePath, logger)
			if err != nil {
				return nil, err
			}
			primary = cached
		}
	}

	logger.Info("ingredient resolver ready",
		zap.String("provider", cfg.LLMProvider),
		zap.Int("dictionary_dishes", dict.Len()),
		zap.Bool("cache", primary != nil && cfg.IngredientCachePath != ""),
	)
	return NewFallbackResolver(logger, primary, dict), nil
}
