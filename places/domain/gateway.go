package domain

import "context"

// PlaceFinder busca uma página de estabelecimentos. pageToken vazio pede a primeira página.
type PlaceFinder interface {
	FindPlaces(ctx context.Context, q Query, pageToken string) (SearchResult, error)
}

// LocationSuggester devolve sugestões de localidade para um texto parcial.
type LocationSuggester interface {
	SuggestLocations(ctx context.Context, input string) ([]Suggestion, error)
}
