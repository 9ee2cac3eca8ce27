package interfaces

import (
	"context"

	"github.com/m-mizutani/jci/pkg/domain/model"
)

// ActionDispatcher defines the interface for running a named CLI action
type ActionDispatcher interface {
	// Dispatch runs the handler registered for action, or the unknown action handler
	Dispatch(ctx context.Context, action string, info *model.GitInfo) error

	// Actions returns the registered action names in sorted order
	Actions() []string
}
