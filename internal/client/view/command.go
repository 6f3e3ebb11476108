package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Command is something a user can do to a post from the list.
type Command int

const (
	CommandEdit Command = iota + 1
	CommandDelete
)

func (c Command) String() string {
	switch c {
	case CommandEdit:
		return "Edit"
	case CommandDelete:
		return "Delete"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand maps a label such as "edit" or "Delete" to a Command.
func ParseCommand(s string) (Command, error) {
	switch s {
	case "edit", "Edit":
		return CommandEdit, nil
	case "delete", "Delete":
		return CommandDelete, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// ErrUnknownCommand is returned for commands with no handler.
var ErrUnknownCommand = errors.New("view: unknown command")

// Action is a command bound to a post.
type Action struct {
	Command Command
	PostID  string
}

// HandlerFunc handles one action.
type HandlerFunc func(ctx context.Context, postID string) error

// Dispatcher routes actions to the handler registered for their command.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Command]HandlerFunc
}

// NewDispatcher returns a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Command]HandlerFunc)}
}

// Handle registers h for cmd, replacing any earlier handler.
func (d *Dispatcher) Handle(cmd Command, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[cmd] = h
}

// Dispatch runs the handler for a.Command.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) error {
	d.mu.RLock()
	h, ok := d.handlers[a.Command]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, a.Command)
	}
	return h(ctx, a.PostID)
}
