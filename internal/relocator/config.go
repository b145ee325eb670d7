package relocator

import (
	"strings"
	"time"
)

// ListTarget identifies the destination list either directly by id or by a
// name that has to be resolved against the board.
type ListTarget struct {
	ID   string
	Name string
}

// NewListTarget builds a target from the raw settings. An id always wins over a name.
func NewListTarget(id, name string) ListTarget {
	id = strings.TrimSpace(id)
	if id != "" {
		return ListTarget{ID: id}
	}
	return ListTarget{Name: strings.TrimSpace(name)}
}

func (t ListTarget) ByID() bool   { return t.ID != "" }
func (t ListTarget) ByName() bool { return t.ID == "" && t.Name != "" }
func (t ListTarget) Valid() bool  { return t.ByID() || t.ByName() }

type Config struct {
	APIKey   string
	APIToken string
	BoardID  string
	List     ListTarget
	// User restricts moves to pull requests opened by that login. Empty allows any author.
	User string
	// MatchAttachment additionally requires a card attachment pointing at the pull request.
	MatchAttachment bool
	Timeout         time.Duration
}

func (c Config) hasTrelloInfo() bool {
	return c.APIKey != "" && c.APIToken != "" && c.BoardID != "" && c.List.Valid()
}
