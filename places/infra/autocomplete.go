package infra

import (
	"context"

	"leadfinder/places/domain"
)

type autocompleteRequest struct {
	Input                   string `json:"input"`
	IncludeQueryPredictions bool   `json:"includeQueryPredictions"`
}

type autocompleteResponse struct {
	Suggestions []struct {
		PlacePrediction *struct {
			PlaceID string `json:"placeId"`
			Text    struct {
				Text string `json:"text"`
			} `json:"text"`
		} `json:"placePrediction"`
	} `json:"suggestions"`
}

// SuggestLocations implementa domain.LocationSuggester.
// Só previsões de lugar são devolvidas; previsões de consulta são pedidas como desligadas.
func (c *Client) SuggestLocations(ctx context.Context, input string) ([]domain.Suggestion, error) {
	req := autocompleteRequest{Input: input, IncludeQueryPredictions: false}

	var resp autocompleteResponse
	if err := c.post(ctx, "autocomplete", "places:autocomplete", "", req, &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Suggestion, 0, len(resp.Suggestions))
	for _, s := range resp.Suggestions {
		if s.PlacePrediction == nil {
			continue
		}
		out = append(out, domain.Suggestion{
			Description: s.PlacePrediction.Text.Text,
			PlaceID:     s.PlacePrediction.PlaceID,
		})
	}
	return out, nil
}
