package adapter

import (
	"fmt"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// NewExtractor builds the extractor named by cfg.Provider.
// The provider package must be linked in (blank import) so its init has registered it.
func NewExtractor(cfg *config.FeedConfig, logger *logrus.Logger) (interfaces.ResultExtractor, error) {
	factory, ok := GetFactory(cfg.Provider)
	if !ok {
		return nil, fmt.Errorf("no extractor registered for provider %q (registered: %v)", cfg.Provider, ListFactories())
	}
	ext := factory(cfg, logger)
	if ext == nil {
		return nil, fmt.Errorf("extractor factory for %q returned nil", cfg.Provider)
	}
	logger.WithField("provider", ext.GetName()).Info("result extractor ready")
	return ext, nil
}
