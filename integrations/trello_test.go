package integrations

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chxlky/webhook-relay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *TrelloClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewTrelloClient(srv.URL, "key123", "token456")
}

func TestTrelloClient_GetBoardLists(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/boards/board1/lists", r.URL.Path)
		assert.Equal(t, "key123", r.URL.Query().Get("key"))
		assert.Equal(t, "token456", r.URL.Query().Get("token"))
		assert.Equal(t, "id,name", r.URL.Query().Get("fields"))
		_ = json.NewEncoder(w).Encode([]models.List{{ID: "l1", Name: "Done"}})
	})

	lists, err := tc.GetBoardLists(context.Background(), "board1")
	require.NoError(t, err)
	assert.Equal(t, []models.List{{ID: "l1", Name: "Done"}}, lists)
}

func TestTrelloClient_SearchCards(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "/guille-moe/YuiTasks/pull/1", q.Get("query"))
		assert.Equal(t, "board1", q.Get("idBoards"))
		assert.Equal(t, "cards", q.Get("modelTypes"))
		assert.Equal(t, "true", q.Get("card_attachments"))
		assert.Equal(t, "1000", q.Get("cards_limit"))
		assert.Equal(t, "false", q.Get("partial"))
		_, _ = w.Write([]byte(`{"cards":[{"id":"a","idList":"pending","attachments":[{"url":"https://github.com/guille-moe/YuiTasks/pull/1"}]}]}`))
	})

	cards, err := tc.SearchCards(context.Background(), "board1", "https://github.com/guille-moe/YuiTasks/pull/1")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "a", cards[0].ID)
	assert.Equal(t, "pending", cards[0].IDList)
	assert.True(t, cards[0].HasAttachment("https://github.com/guille-moe/YuiTasks/pull/1"))
}

func TestTrelloClient_MoveCard(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cards/alpha", r.URL.Path)
		assert.Equal(t, "59cd0116971611a3db0f7491", r.URL.Query().Get("idList"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, tc.MoveCard(context.Background(), "alpha", "59cd0116971611a3db0f7491"))
}

func TestTrelloClient_Non200(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	err := tc.MoveCard(context.Background(), "alpha", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid token")
}

func TestTrelloClient_WithCredentials(t *testing.T) {
	t.Parallel()

	base := NewTrelloClient("", "k", "t")
	assert.Equal(t, DefaultTrelloURL, base.BaseURL)

	cp := base.WithCredentials("k2", "t2")
	assert.Equal(t, "k2", cp.APIKey)
	assert.Equal(t, "t2", cp.APIToken)
	assert.Equal(t, "k", base.APIKey)
	assert.Same(t, base.Client, cp.Client)
}
