package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/market-intel/pkg/serper"
)

// mockSearch returns a canned response and records queries.
type mockSearch struct {
	resp    *serper.SearchResponse
	err     error
	queries []string
	nums    []int
}

func (m *mockSearch) Search(_ context.Context, query string, numResults int) (*serper.SearchResponse, error) {
	m.queries = append(m.queries, query)
	m.nums = append(m.nums, numResults)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestDiscover_MapsOrganicResults(t *testing.T) {
	mock := &mockSearch{resp: &serper.SearchResponse{
		Organic: []serper.OrganicResult{
			{Title: "Rival One", Link: "https://rival1.com", Snippet: "CRM for plumbers", Position: 1},
			{Title: "Rival Two", Link: "https://rival2.com", Snippet: "Another CRM", Position: 2},
		},
	}}
	f := New(mock, Config{})

	competitors, err := f.Discover(context.Background(), "plumber crm software")

	require.NoError(t, err)
	require.Len(t, competitors, 2)
	assert.Equal(t, "https://rival1.com", competitors[0].URL)
	assert.Equal(t, "Rival One", competitors[0].Title)
	assert.Equal(t, "CRM for plumbers", competitors[0].Snippet)
	assert.Equal(t, 1, competitors[0].Position)
	assert.False(t, competitors[0].Success, "stubs are not analyzed yet")
	assert.Equal(t, []string{"plumber crm software"}, mock.queries)
	assert.Equal(t, []int{10}, mock.nums)
}

func TestDiscover_PositionDefaultsToRank(t *testing.T) {
	mock := &mockSearch{resp: &serper.SearchResponse{
		Organic: []serper.OrganicResult{
			{Title: "A", Link: "https://a.com"},
			{Title: "B", Link: "https://b.com"},
		},
	}}
	f := New(mock, Config{})

	competitors, err := f.Discover(context.Background(), "phrase")

	require.NoError(t, err)
	assert.Equal(t, 1, competitors[0].Position)
	assert.Equal(t, 2, competitors[1].Position)
}

func TestDiscover_CapsAtMaxResults(t *testing.T) {
	var organic []serper.OrganicResult
	for i := 0; i < 15; i++ {
		organic = append(organic, serper.OrganicResult{Link: "https://x.com", Position: i + 1})
	}
	mock := &mockSearch{resp: &serper.SearchResponse{Organic: organic}}
	f := New(mock, Config{MaxResults: 10})

	competitors, err := f.Discover(context.Background(), "phrase")

	require.NoError(t, err)
	assert.Len(t, competitors, 10)
}

func TestDiscover_EmptyResults(t *testing.T) {
	mock := &mockSearch{resp: &serper.SearchResponse{}}
	f := New(mock, Config{})

	competitors, err := f.Discover(context.Background(), "obscure phrase")

	require.NoError(t, err)
	assert.Empty(t, competitors)
}

func TestDiscover_NoCredential(t *testing.T) {
	f := New(nil, Config{})

	assert.False(t, f.Enabled())
	_, err := f.Discover(context.Background(), "phrase")
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestDiscover_SearchError(t *testing.T) {
	mock := &mockSearch{err: errors.New("quota exceeded")}
	f := New(mock, Config{})

	assert.True(t, f.Enabled())
	_, err := f.Discover(context.Background(), "phrase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover: search")
	// Default config makes a single attempt.
	assert.Len(t, mock.queries, 1)
}
