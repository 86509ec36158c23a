// Package infra implementa os gateways de busca e autocomplete sobre a
// Places API (New) do Google: POST places:searchText e places:autocomplete.
package infra
