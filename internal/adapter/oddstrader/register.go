package oddstrader

import "SavantGrader/internal/adapter"

func init() {
	adapter.Register(ProviderName, NewExtractor)
}
