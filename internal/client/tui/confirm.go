package tui

import "context"

type confirmRequest struct {
	prompt string
	reply  chan bool
}

// Confirmer answers form.Confirmer by asking the running model. Confirm
// blocks until the user presses y or n, or ctx ends.
type Confirmer struct {
	requests chan confirmRequest
}

// NewConfirmer returns a Confirmer to be shared by the form controller and
// the model.
func NewConfirmer() *Confirmer {
	return &Confirmer{requests: make(chan confirmRequest)}
}

// Confirm implements form.Confirmer.
func (c *Confirmer) Confirm(ctx context.Context, prompt string) bool {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-req.reply:
		return ok
	case <-ctx.Done():
		return false
	}
}
