package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chxlky/webhook-relay/internal/models"
	"go.uber.org/zap"
)

const DefaultTrelloURL = "https://api.trello.com/1/"

// searchCardsLimit is the largest page Trello search accepts; the default is 10.
const searchCardsLimit = 1000

type TrelloClient struct {
	Client   *http.Client
	BaseURL  string
	APIKey   string
	APIToken string
}

func NewTrelloClient(baseURL, key, token string) *TrelloClient {
	if baseURL == "" {
		baseURL = DefaultTrelloURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &TrelloClient{
		Client:   &http.Client{},
		BaseURL:  baseURL,
		APIKey:   key,
		APIToken: token,
	}
}

// WithCredentials returns a copy of the client that authenticates with key and token.
func (tc *TrelloClient) WithCredentials(key, token string) *TrelloClient {
	cp := *tc
	cp.APIKey = key
	cp.APIToken = token
	return &cp
}

func (tc *TrelloClient) GetBoardLists(ctx context.Context, boardID string) ([]models.List, error) {
	query := url.Values{}
	query.Set("fields", "id,name")

	var lists []models.List
	if err := tc.do(ctx, http.MethodGet, "boards/"+url.PathEscape(boardID)+"/lists", query, &lists); err != nil {
		return nil, err
	}

	zap.L().Debug("Fetched Trello board lists", zap.String("boardID", boardID), zap.Int("count", len(lists)))

	return lists, nil
}

// SearchCards looks up the cards of a board that reference prURL. Trello
// search matches on the URL path, the host part only adds noise.
func (tc *TrelloClient) SearchCards(ctx context.Context, boardID, prURL string) ([]models.Card, error) {
	query := url.Values{}
	query.Set("query", searchTerm(prURL))
	query.Set("idBoards", boardID)
	query.Set("modelTypes", "cards")
	query.Set("card_attachments", "true")
	query.Set("cards_limit", strconv.Itoa(searchCardsLimit))
	query.Set("partial", "false")

	var result models.CardSearchResult
	if err := tc.do(ctx, http.MethodGet, "search", query, &result); err != nil {
		return nil, err
	}

	if len(result.Cards) >= searchCardsLimit {
		zap.L().Warn("Trello card search hit its limit, some cards may be missing", zap.String("boardID", boardID), zap.Int("limit", searchCardsLimit))
	}

	zap.L().Debug("Searched Trello cards", zap.String("boardID", boardID), zap.String("query", query.Get("query")), zap.Int("count", len(result.Cards)))

	return result.Cards, nil
}

func (tc *TrelloClient) MoveCard(ctx context.Context, cardID, listID string) error {
	query := url.Values{}
	query.Set("idList", listID)

	if err := tc.do(ctx, http.MethodPut, "cards/"+url.PathEscape(cardID), query, nil); err != nil {
		return err
	}

	zap.L().Debug("Moved Trello card", zap.String("cardID", cardID), zap.String("listID", listID))

	return nil
}

func (tc *TrelloClient) do(ctx context.Context, method, path string, query url.Values, out any) error {
	query.Set("key", tc.APIKey)
	query.Set("token", tc.APIToken)

	apiURL := tc.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", strings.ToLower(method), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := tc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", strings.ToLower(method), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trello API returned non-200 status: %s, body: %s", resp.Status, string(bodyBytes))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode Trello response: %w", err)
	}

	return nil
}

func searchTerm(prURL string) string {
	u, err := url.Parse(prURL)
	if err != nil || u.Path == "" {
		return prURL
	}
	return u.Path
}
