package models

// Result is the single terminal answer of an invocation. Exactly one of Ack
// and Nack is set.
type Result struct {
	Ack   any           `json:"ack,omitempty"`
	Nack  string        `json:"nack,omitempty"`
	Moves []MoveOutcome `json:"moves,omitempty"`
}

type MoveOutcome struct {
	CardID string `json:"cardId"`
	Moved  bool   `json:"moved"`
	Error  string `json:"error,omitempty"`
}

func Ack(val any) Result {
	return Result{Ack: val}
}

func Nack(reason string) Result {
	return Result{Nack: reason}
}

func (r Result) Acked() bool {
	return r.Nack == "" && r.Ack != nil
}
