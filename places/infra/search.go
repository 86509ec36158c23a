package infra

import (
	"context"
	"strings"

	"leadfinder/places/domain"
)

type searchTextRequest struct {
	TextQuery string `json:"textQuery"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchTextResponse struct {
	Places        []placeDTO `json:"places"`
	NextPageToken string     `json:"nextPageToken"`
}

type placeDTO struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress    string   `json:"formattedAddress"`
	NationalPhoneNumber *string  `json:"nationalPhoneNumber"`
	WebsiteURI          *string  `json:"websiteUri"`
	Rating              *float64 `json:"rating"`
	UserRatingCount     *int     `json:"userRatingCount"`
	GoogleMapsURI       *string  `json:"googleMapsUri"`
	Types               []string `json:"types"`
	Location            *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// FindPlaces implementa domain.PlaceFinder.
func (c *Client) FindPlaces(ctx context.Context, q domain.Query, pageToken string) (domain.SearchResult, error) {
	req := searchTextRequest{
		TextQuery: q.Combined(),
		PageToken: pageToken,
	}

	var resp searchTextResponse
	if err := c.post(ctx, "search", "places:searchText", searchFieldMask, req, &resp); err != nil {
		return domain.SearchResult{}, err
	}

	out := domain.SearchResult{
		Places:        make([]domain.Business, 0, len(resp.Places)),
		NextPageToken: resp.NextPageToken,
	}
	for _, p := range resp.Places {
		out.Places = append(out.Places, p.normalize())
	}
	return out, nil
}

func (p placeDTO) normalize() domain.Business {
	b := domain.Business{
		ID:              p.ID,
		Name:            domain.UnknownBusinessName,
		Address:         p.FormattedAddress,
		PhoneNumber:     nonEmpty(p.NationalPhoneNumber),
		WebsiteURI:      nonEmpty(p.WebsiteURI),
		Rating:          p.Rating,
		UserRatingCount: p.UserRatingCount,
		GoogleMapsURI:   nonEmpty(p.GoogleMapsURI),
		Types:           p.Types,
	}
	if p.DisplayName != nil && strings.TrimSpace(p.DisplayName.Text) != "" {
		b.Name = p.DisplayName.Text
	}
	if p.Location != nil {
		b.Location = &domain.LatLng{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	return b
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
