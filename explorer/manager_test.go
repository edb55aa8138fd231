package explorer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	books []BookRecord
	err   error

	calls   int
	lastMax int
}

func (s *stubCatalog) Search(ctx context.Context, query string, maxResults int) ([]BookRecord, error) {
	s.calls++
	s.lastMax = maxResults
	return s.books, s.err
}

func newTestExplorer(t *testing.T, catalog Catalog) *Explorer {
	t.Helper()
	return newExplorer(tempDB(t), catalog, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	ex := newTestExplorer(t, &stubCatalog{})

	require.NoError(t, ex.Register("alice", "pw"))
	assert.ErrorIs(t, ex.Register("alice", "pw2"), ErrUserExists)
	assert.ErrorIs(t, ex.Register("", "pw"), ErrEmptyCredentials)
	assert.ErrorIs(t, ex.Register("bob", "   "), ErrEmptyCredentials)

	_, err := ex.Login("alice", "pw2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = ex.Login("bob", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	s, err := ex.Login("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.True(t, s.Active())
	assert.False(t, s.StartedAt.IsZero())
}

func TestSearchRecordsHistory(t *testing.T) {
	catalog := &stubCatalog{books: []BookRecord{{Title: "Dune"}, {Title: "Dune Messiah"}}}
	ex := newTestExplorer(t, catalog)
	require.NoError(t, ex.Register("alice", "pw"))
	s, err := ex.Login("alice", "pw")
	require.NoError(t, err)

	books, err := ex.Search(context.Background(), s, "dune", 2)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Dune Messiah", books[1].Title)
	assert.Equal(t, 2, catalog.lastMax)

	history, err := ex.History(s, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "dune", history[0].Query)
	assert.Equal(t, 2, history[0].ResultCount)
	assert.Equal(t, "alice", history[0].Username)
}

func TestSearchLogsZeroResultsOnEmpty(t *testing.T) {
	ex := newTestExplorer(t, &stubCatalog{books: []BookRecord{}})
	require.NoError(t, ex.Register("alice", "pw"))
	s, _ := ex.Login("alice", "pw")

	books, err := ex.Search(context.Background(), s, "zzzz", 40)
	require.NoError(t, err)
	assert.Empty(t, books)

	history, _ := ex.History(s, DefaultHistoryLimit)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].ResultCount)
}

func TestSearchClampsMaxResults(t *testing.T) {
	catalog := &stubCatalog{}
	ex := newTestExplorer(t, catalog)
	require.NoError(t, ex.Register("alice", "pw"))
	s, _ := ex.Login("alice", "pw")

	_, err := ex.Search(context.Background(), s, "dune", 40)
	require.NoError(t, err)
	assert.Equal(t, MaxResults, catalog.lastMax)

	_, err = ex.Search(context.Background(), s, "dune", 0)
	require.NoError(t, err)
	assert.Equal(t, MinResults, catalog.lastMax)
}

func TestSearchMalformedIsNotLogged(t *testing.T) {
	ex := newTestExplorer(t, &stubCatalog{err: ErrMalformedResponse})
	require.NoError(t, ex.Register("alice", "pw"))
	s, _ := ex.Login("alice", "pw")

	_, err := ex.Search(context.Background(), s, "dune", 6)
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	history, _ := ex.History(s, DefaultHistoryLimit)
	assert.Empty(t, history)
}

func TestSessionRequired(t *testing.T) {
	catalog := &stubCatalog{}
	ex := newTestExplorer(t, catalog)
	require.NoError(t, ex.Register("alice", "pw"))

	_, err := ex.Search(context.Background(), nil, "dune", 6)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = ex.History(nil, 8)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	s, err := ex.Login("alice", "pw")
	require.NoError(t, err)
	_, err = ex.Search(context.Background(), s, "  ", 6)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	ex.Logout(s)
	assert.False(t, s.Active())
	ex.Logout(s) // no-op

	_, err = ex.Search(context.Background(), s, "dune", 6)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = ex.History(s, 8)
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Zero(t, catalog.calls)
}

func TestHistoryIsPerUser(t *testing.T) {
	ex := newTestExplorer(t, &stubCatalog{books: []BookRecord{{Title: "x"}}})
	require.NoError(t, ex.Register("alice", "pw"))
	require.NoError(t, ex.Register("bob", "pw"))
	alice, _ := ex.Login("alice", "pw")
	bob, _ := ex.Login("bob", "pw")

	for _, q := range []string{"a1", "a2", "a3"} {
		_, err := ex.Search(context.Background(), alice, q, 6)
		require.NoError(t, err)
	}
	_, err := ex.Search(context.Background(), bob, "b1", 6)
	require.NoError(t, err)

	history, err := ex.History(alice, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "a3", history[0].Query)
	assert.Equal(t, "a2", history[1].Query)

	history, _ = ex.History(bob, DefaultHistoryLimit)
	require.Len(t, history, 1)
	assert.Equal(t, "b1", history[0].Query)
}

func TestExplorerWithCatalogClient(t *testing.T) {
	c := newTestCatalog(t, "", respondJSON(duneResponse))
	ex := newTestExplorer(t, c)
	require.NoError(t, ex.Register("alice", "pw"))
	s, err := ex.Login("alice", "pw")
	require.NoError(t, err)

	books, err := ex.Search(context.Background(), s, "dune", 2)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, []string{"Dune", "Dune Messiah"}, []string{books[0].Title, books[1].Title})

	history, err := ex.History(s, DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "dune", history[0].Query)
	assert.Equal(t, 2, history[0].ResultCount)
}
