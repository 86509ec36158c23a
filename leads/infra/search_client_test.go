package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchClient_Search(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"places":[{"id":"p1","name":"Cafe","address":"x"}],"nextPageToken":"T"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewSearchClient(srv.URL + "/")
	res, err := c.Search(context.Background(), "cafes", "Lisbon", "tok")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"query": "cafes", "location": "Lisbon", "pageToken": "tok"}, got)
	assert.Equal(t, "T", res.NextPageToken)
	require.Len(t, res.Places, 1)
	assert.Equal(t, "Cafe", res.Places[0].Name)
}

func TestSearchClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":429,"message":"Too many requests. Please wait a moment and try again."}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewSearchClient(srv.URL).Search(context.Background(), "cafes", "", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "Too many requests. Please wait a moment and try again.", apiErr.Message)
}

func TestSearchClient_APIErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := NewSearchClient(srv.URL).Search(context.Background(), "cafes", "", "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestSearchClient_Suggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/autocomplete", r.URL.Path)
		assert.Equal(t, "São Paulo", r.URL.Query().Get("input"))
		_, _ = w.Write([]byte(`[{"description":"São Paulo, Brazil","placeId":"abc"}]`))
	}))
	t.Cleanup(srv.Close)

	out, err := NewSearchClient(srv.URL).SuggestLocations(context.Background(), "São Paulo")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "abc", out[0].PlaceID)
}
