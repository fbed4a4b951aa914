// Package port defines the persistence contracts the application layer
// depends on. Implementations live in internal/repository; tests supply
// fakes.
package port

import (
	"context"

	"github.com/albertobarcelos/nexflow/internal/models"
)

// CardRepository defines persistence operations for cards.
type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	ListByFlow(ctx context.Context, flowID string) ([]*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	UpdateStep(ctx context.Context, id, stepID string) error
	Delete(ctx context.Context, id string) error
}

// StepRepository defines read operations for flow steps.
type StepRepository interface {
	StepsForFlow(ctx context.Context, flowID string) ([]models.Step, error)
	GetByID(ctx context.Context, id string) (*models.Step, error)
}

// FlowRepository defines read operations for flows.
type FlowRepository interface {
	GetByID(ctx context.Context, id string) (*models.Flow, error)
}

// HistoryRepository defines persistence operations for movement history.
// Entries are append-only.
type HistoryRepository interface {
	Append(ctx context.Context, entry *models.MovementHistoryEntry) error
	CardHistory(ctx context.Context, cardID string, parentCardID *string) ([]models.MovementHistoryEntry, error)
}

// TransactionManager runs a function inside a database transaction. The
// context passed to fn carries the transaction; repository calls made with
// it join the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
