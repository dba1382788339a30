package api

import (
	"context"

	"github.com/lowdine/lowdine/internal/finder"
	"github.com/lowdine/lowdine/internal/geosuggest"
)

// SuggestService defines the autocomplete operation needed by handlers.
type SuggestService interface {
	Suggest(ctx context.Context, query, clientID string) ([]geosuggest.Suggestion, error)
}

// RestaurantFinder defines the venue search operation needed by handlers.
type RestaurantFinder interface {
	Find(ctx context.Context, req finder.Request) (*finder.Result, error)
}
