package domain

import "strings"

// UnknownBusinessName substitui o nome quando o diretório não devolve displayName.
const UnknownBusinessName = "Unknown Business"

// Business é um estabelecimento normalizado. Campos opcionais ausentes no diretório
// ficam nil (nunca zero ou string vazia).
type Business struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	PhoneNumber     *string  `json:"phoneNumber,omitempty"`
	WebsiteURI      *string  `json:"websiteUri,omitempty"`
	Rating          *float64 `json:"rating,omitempty"`
	UserRatingCount *int     `json:"userRatingCount,omitempty"`
	GoogleMapsURI   *string  `json:"googleMapsUri,omitempty"`
	Types           []string `json:"types,omitempty"`
	Location        *LatLng  `json:"location,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PrimaryType é a categoria exibida: a primeira tag, ou "".
func (b Business) PrimaryType() string {
	if len(b.Types) == 0 {
		return ""
	}
	return b.Types[0]
}

// Clone devolve uma cópia sem compartilhar ponteiros nem slices com b.
func (b Business) Clone() Business {
	out := b
	out.PhoneNumber = cloneString(b.PhoneNumber)
	out.WebsiteURI = cloneString(b.WebsiteURI)
	out.GoogleMapsURI = cloneString(b.GoogleMapsURI)
	if b.Rating != nil {
		v := *b.Rating
		out.Rating = &v
	}
	if b.UserRatingCount != nil {
		v := *b.UserRatingCount
		out.UserRatingCount = &v
	}
	if b.Types != nil {
		out.Types = append([]string(nil), b.Types...)
	}
	if b.Location != nil {
		v := *b.Location
		out.Location = &v
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// SearchResult é uma página. NextPageToken vazio significa que não há mais páginas;
// o token só vale para a mesma Query que o produziu.
type SearchResult struct {
	Places        []Business `json:"places"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

func (r SearchResult) HasMore() bool { return r.NextPageToken != "" }

// Suggestion é uma sugestão de localidade do autocomplete.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

// Query é o par (categoria, localidade) de uma busca.
type Query struct {
	Text     string `json:"query"`
	Location string `json:"location"`
}

// Combined monta o texto livre enviado ao diretório.
func (q Query) Combined() string {
	text := strings.TrimSpace(q.Text)
	if loc := strings.TrimSpace(q.Location); loc != "" {
		return text + " in " + loc
	}
	return text
}
