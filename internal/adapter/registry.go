package adapter

import (
	"fmt"
	"sort"
	"strings"

	"SavantGrader/internal/config"
	"SavantGrader/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Factory builds a result extractor for one feed provider
type Factory func(cfg *config.FeedConfig, logger *logrus.Logger) interfaces.ResultExtractor

var factoryRegistry = make(map[string]Factory)

// Register called from each provider package's init
func Register(provider string, factory Factory) {
	if factory == nil {
		panic(fmt.Sprintf("extractor factory for %s must not be nil", provider))
	}
	key := strings.ToLower(provider)
	if _, exists := factoryRegistry[key]; exists {
		logrus.Warnf("extractor %s already registered, overriding", key)
	}
	factoryRegistry[key] = factory
}

// GetFactory factory registered under provider (case-insensitive)
func GetFactory(provider string) (Factory, bool) {
	factory, ok := factoryRegistry[strings.ToLower(provider)]
	return factory, ok
}

// ListFactories registered provider names, sorted
func ListFactories() []string {
	providers := make([]string, 0, len(factoryRegistry))
	for p := range factoryRegistry {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
