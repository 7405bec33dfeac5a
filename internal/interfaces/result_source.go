package interfaces

import (
	"context"

	"SavantGrader/internal/model"
)

// ResultExtractor turns a raw feed document (markdown export, JSON schedule) into completed games.
// Implementations never panic and never fail: malformed input yields an empty slice.
type ResultExtractor interface {
	GetName() string                                            // provider name, also the registry key
	ExtractResults(document string) []*model.CompletedGameResult // final games only, in document order
}

// FeedSource loads one raw feed document
type FeedSource interface {
	Fetch(ctx context.Context) (string, error)
}
