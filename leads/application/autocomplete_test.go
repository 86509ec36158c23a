package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	places "leadfinder/places/domain"
)

const (
	time2s = 2 * time.Second
	tick   = 5 * time.Millisecond
)

type recordingSuggester struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (r *recordingSuggester) SuggestLocations(_ context.Context, input string) ([]places.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return nil, r.err
	}
	return []places.Suggestion{{Description: input + ", Portugal", PlaceID: "id-" + input}}, nil
}

func (r *recordingSuggester) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

func TestAutocomplete_ShortInputSkipsCall(t *testing.T) {
	rec := &recordingSuggester{}
	a := NewAutocompleter(rec, WithDebounce(0))

	out, err := a.Suggest(context.Background(), "Li")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Empty(t, rec.seen())
}

func TestAutocomplete_CallsAfterDebounce(t *testing.T) {
	rec := &recordingSuggester{}
	a := NewAutocompleter(rec, WithDebounce(10*time.Millisecond))

	out, err := a.Suggest(context.Background(), " Lis ")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-Lis", out[0].PlaceID)
	assert.Equal(t, []string{"Lis"}, rec.seen())
}

func TestAutocomplete_NewerCallSupersedesPending(t *testing.T) {
	rec := &recordingSuggester{}
	a := NewAutocompleter(rec, WithDebounce(200*time.Millisecond))

	first := make(chan error, 1)
	go func() {
		_, err := a.Suggest(context.Background(), "Lis")
		first <- err
	}()
	time.Sleep(20 * time.Millisecond)

	out, err := a.Suggest(context.Background(), "Lisb")
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.Equal(t, []string{"Lisb"}, rec.seen())
}

func TestAutocomplete_FailureIsEmpty(t *testing.T) {
	a := NewAutocompleter(&recordingSuggester{err: errors.New("boom")}, WithDebounce(0))

	out, err := a.Suggest(context.Background(), "Lisbon")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestAutocomplete_ContextCanceledDuringDebounce(t *testing.T) {
	a := NewAutocompleter(&recordingSuggester{}, WithDebounce(time.Second))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Suggest(ctx, "Lisbon")
	assert.ErrorIs(t, err, context.Canceled)
}
