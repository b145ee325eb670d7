package models

type Attachment struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Card struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	IDList      string       `json:"idList"`
	Attachments []Attachment `json:"attachments"`
}

// HasAttachment reports whether one of the card attachments points at url.
func (c Card) HasAttachment(url string) bool {
	for _, a := range c.Attachments {
		if a.URL == url {
			return true
		}
	}
	return false
}

type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CardSearchResult struct {
	Cards []Card `json:"cards"`
}
