// Package relocator moves the Trello cards linked to a merged GitHub pull
// request into a target list.
package relocator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/chxlky/webhook-relay/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Board is the subset of the Trello API a relocation talks to.
type Board interface {
	GetBoardLists(ctx context.Context, boardID string) ([]models.List, error)
	SearchCards(ctx context.Context, boardID, prURL string) ([]models.Card, error)
	MoveCard(ctx context.Context, cardID, listID string) error
}

// BoardFactory returns a Board authenticated with the given credentials.
type BoardFactory func(apiKey, apiToken string) Board

type Relocator struct {
	newBoard BoardFactory
	logger   *zap.Logger
}

func New(newBoard BoardFactory, logger *zap.Logger) *Relocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relocator{newBoard: newBoard, logger: logger}
}

// Relocate runs one relocation and returns its terminal result. Every path
// ends in exactly one Result.
func (r *Relocator) Relocate(ctx context.Context, event models.PullRequestEvent, cfg Config) models.Result {
	if err := NeedToClose(event, cfg); err != nil {
		r.logger.Info("PR not supposed to move", zap.Error(err))
		return models.Nack("PR not supposed to move: " + err.Error())
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	board := r.newBoard(cfg.APIKey, cfg.APIToken)
	prURL := event.PullRequest.HTMLURL
	log := r.logger.With(zap.String("boardID", cfg.BoardID), zap.String("pr", prURL))

	listID, err := ResolveList(ctx, board, cfg.BoardID, cfg.List)
	if err != nil {
		log.Warn("Could not resolve target list", zap.Error(err))
		return models.Nack(err.Error())
	}

	cards, err := board.SearchCards(ctx, cfg.BoardID, prURL)
	if err != nil {
		log.Error("Card search failed", zap.Error(err))
		return models.Nack(fmt.Sprintf("%s: \n%v", ErrCardSearch, err))
	}

	ids := CardsToMove(cards, listID, prURL, cfg.MatchAttachment)
	if len(ids) == 0 {
		log.Info("No cards to move", zap.Int("found", len(cards)))
		return models.Nack(ErrNoCards.Error())
	}

	log.Info("Moving cards", zap.Strings("cardIDs", ids), zap.String("listID", listID))

	return r.moveCards(ctx, board, ids, listID)
}

func (r *Relocator) moveCards(ctx context.Context, board Board, ids []string, listID string) models.Result {
	pending := NewPendingSet(ids)

	var (
		once   sync.Once
		result models.Result
	)
	emit := func() {
		once.Do(func() { result = summarize(pending.Outcomes()) })
	}

	var g errgroup.Group
	for _, id := range pending.IDs() {
		g.Go(func() error {
			err := board.MoveCard(ctx, id, listID)
			if err != nil {
				r.logger.Warn("Card move failed", zap.String("cardID", id), zap.Error(err))
			}
			if pending.Complete(id, err) {
				emit()
			}
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func summarize(outcomes []models.MoveOutcome) models.Result {
	var failed []string
	for _, o := range outcomes {
		if !o.Moved {
			failed = append(failed, fmt.Sprintf("card %s: %s", o.CardID, o.Error))
		}
	}
	if len(failed) == 0 {
		res := models.Ack(true)
		res.Moves = outcomes
		return res
	}

	res := models.Nack(fmt.Sprintf("%s: moved %d of %d cards: %s",
		ErrMoveFailed, len(outcomes)-len(failed), len(outcomes), strings.Join(failed, "; ")))
	res.Moves = outcomes
	return res
}

// NeedToClose checks that the event is a merged pull request the
// configuration allows to act on. The first failing check is returned.
func NeedToClose(event models.PullRequestEvent, cfg Config) error {
	switch {
	case event.Action == "" || event.PullRequest == nil:
		return ErrMalformedEvent
	case event.Action != "closed" || !event.PullRequest.Merged:
		return ErrNotMerged
	case cfg.User != "" && event.PullRequest.User.Login != cfg.User:
		return ErrOwnerMismatch
	case !cfg.hasTrelloInfo():
		return ErrMissingTrelloInfo
	}
	return nil
}

// ResolveList returns the id of the target list, looking it up by name on
// the board when no id is configured.
func ResolveList(ctx context.Context, board Board, boardID string, target ListTarget) (string, error) {
	switch {
	case target.ByID():
		return target.ID, nil
	case target.ByName():
	default:
		return "", ErrInvalidList
	}

	lists, err := board.GetBoardLists(ctx, boardID)
	if err != nil {
		return "", fmt.Errorf("%w: \n%w", ErrListLookup, err)
	}

	name := strings.TrimSpace(target.Name)
	for _, l := range lists {
		if strings.TrimSpace(l.Name) == name && l.ID != "" {
			return l.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrListNotFound, name)
}

// CardsToMove keeps, in discovery order, the ids of the cards not already in
// listID. With matchAttachment a card must also carry an attachment to prURL.
func CardsToMove(cards []models.Card, listID, prURL string, matchAttachment bool) []string {
	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IDList == listID {
			continue
		}
		if matchAttachment && !card.HasAttachment(prURL) {
			continue
		}
		ids = append(ids, card.ID)
	}
	return ids
}
