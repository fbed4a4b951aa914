// Package service holds the application services bridging the pipeline
// engine, the persistence ports and the HTTP adapter.
package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/engine"
	"github.com/albertobarcelos/nexflow/internal/models"
	"github.com/albertobarcelos/nexflow/pkg/utils"
)

// MoveDirection selects how MoveCard picks the target step.
type MoveDirection string

const (
	MoveForward MoveDirection = "forward"
	MoveBack    MoveDirection = "back"
)

// CardService manages the lifecycle of cards within their flows.
type CardService interface {
	GetCardView(ctx context.Context, cardID, openFlowID string) (*engine.ReadModel, error)
	CreateCard(ctx context.Context, flowID, title string) (*models.Card, error)
	SaveCard(ctx context.Context, cardID string, form models.CardFormValues) error
	MoveCard(ctx context.Context, cardID string, direction MoveDirection) error
	MoveCardToStep(ctx context.Context, cardID, stepID string) error
	DeleteCard(ctx context.Context, cardID string) error
}

type cardServiceImpl struct {
	cards   port.CardRepository
	steps   port.StepRepository
	history port.HistoryRepository
	tx      port.TransactionManager
	engine  *engine.Engine
	logger  *zap.Logger

	mu     sync.Mutex
	moving map[string]bool // card id -> move in flight, one session's busy flag
}

// NewCardService creates a CardService.
func NewCardService(
	cards port.CardRepository,
	steps port.StepRepository,
	history port.HistoryRepository,
	tx port.TransactionManager,
	eng *engine.Engine,
	logger *zap.Logger,
) CardService {
	return &cardServiceImpl{
		cards:   cards,
		steps:   steps,
		history: history,
		tx:      tx,
		engine:  eng,
		logger:  logger,
		moving:  make(map[string]bool),
	}
}

// GetCardView loads a card and derives the full read-model against the flow
// currently open in the UI.
func (s *cardServiceImpl) GetCardView(ctx context.Context, cardID, openFlowID string) (*engine.ReadModel, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	supplied, err := s.steps.StepsForFlow(ctx, s.suppliedFlow(card, openFlowID))
	if err != nil {
		s.logger.Warn("supplied step list unavailable",
			zap.String("card_id", cardID), zap.Error(err))
		supplied = nil
	}

	return s.engine.BuildReadModel(ctx, card, supplied, openFlowID), nil
}

func (s *cardServiceImpl) suppliedFlow(card *models.Card, openFlowID string) string {
	if openFlowID != "" {
		return openFlowID
	}
	return card.FlowID
}

// CreateCard creates a card on the first step of the flow.
func (s *cardServiceImpl) CreateCard(ctx context.Context, flowID, title string) (*models.Card, error) {
	steps, err := s.steps.StepsForFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}
	sorted := engine.SortSteps(steps)
	if len(sorted) == 0 {
		return nil, ErrNoNextStep
	}
	first := sorted[0]

	now := time.Now()
	card := &models.Card{
		FlowID:      flowID,
		StepID:      first.ID,
		Title:       utils.SanitizeString(title),
		FieldValues: map[string]models.FieldValue{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if first.DefaultAssigneeID != nil {
		card.AssigneeUserID = first.DefaultAssigneeID
	}
	if first.DefaultTeamID != nil {
		card.AssigneeTeamID = first.DefaultTeamID
	}

	if err := s.cards.Create(ctx, card); err != nil {
		s.logger.Error("failed to create card", zap.String("flow_id", flowID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("card created", zap.String("card_id", card.ID), zap.String("flow_id", flowID))
	return card, nil
}

// SaveCard writes the form buffer back onto the card. System values go to
// their dedicated attributes only; the generic field map receives what the
// hydrator left generic, so a hydrate/save round trip never duplicates
// assignment values into it. Nothing is persisted when the card's access
// state is disabled.
func (s *cardServiceImpl) SaveCard(ctx context.Context, cardID string, form models.CardFormValues) error {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.ensureEditable(ctx, card); err != nil {
		return err
	}

	if form.Title != "" {
		card.Title = utils.SanitizeString(form.Title)
	}
	card.FieldValues = stripSystemKeys(form.Fields)
	card.ChecklistState = form.ChecklistState
	card.AssigneeUserID = form.AssignedTo
	card.AssigneeTeamID = form.AssignedTeamID
	card.SetAgents(form.Agents)
	card.ProductID = form.ProductID
	card.Value = form.Value
	card.UpdatedAt = time.Now()

	if err := s.cards.Update(ctx, card); err != nil {
		s.logger.Error("failed to save card", zap.String("card_id", cardID), zap.Error(err))
		return err
	}
	s.logger.Info("card saved", zap.String("card_id", cardID))
	return nil
}

// MoveCard advances or retreats the card by one step. Forward moves are gated
// by the requirement check; backward moves never are. One move per card at a
// time: a second call while the first is in flight gets ErrCardBusy.
func (s *cardServiceImpl) MoveCard(ctx context.Context, cardID string, direction MoveDirection) error {
	release, err := s.acquireMove(cardID)
	if err != nil {
		return err
	}
	defer release()

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	steps, err := s.steps.StepsForFlow(ctx, card.FlowID)
	if err != nil {
		return err
	}
	pos := engine.Locate(steps, card.StepID)

	access := engine.DeriveAccess(card, pos.Current, "")
	if access.Disabled {
		return ErrCardDisabled
	}

	var target *models.Step
	switch direction {
	case MoveBack:
		if pos.Previous == nil {
			return ErrNoPreviousStep
		}
		target = pos.Previous
	default:
		if pos.Current == nil || pos.Next == nil {
			return ErrNoNextStep
		}
		form := engine.Hydrate(card, pos.Current.Fields)
		if check := engine.CheckTransition(pos.Current, &form); !check.Allowed {
			return &MoveBlockedError{Unmet: check.Unmet}
		}
		target = pos.Next
	}

	return s.commitMove(ctx, card, pos.Current, target)
}

// MoveCardToStep moves the card to an arbitrary step of its flow, recording
// a complete or cancel action when the target is a terminal step.
func (s *cardServiceImpl) MoveCardToStep(ctx context.Context, cardID, stepID string) error {
	release, err := s.acquireMove(cardID)
	if err != nil {
		return err
	}
	defer release()

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	steps, err := s.steps.StepsForFlow(ctx, card.FlowID)
	if err != nil {
		return err
	}
	pos := engine.Locate(steps, card.StepID)

	access := engine.DeriveAccess(card, pos.Current, "")
	if access.Disabled {
		return ErrCardDisabled
	}

	target := engine.Locate(steps, stepID).Current
	if target == nil {
		return ErrStepNotInFlow
	}

	return s.commitMove(ctx, card, pos.Current, target)
}

// commitMove records the history entry and the step change as one
// transaction, so a card never points at a step with no corresponding
// timeline entry. The local card is updated only after the write succeeds.
func (s *cardServiceImpl) commitMove(ctx context.Context, card *models.Card, from, to *models.Step) error {
	entry := &models.MovementHistoryEntry{
		CardID:     card.ID,
		ToStepID:   to.ID,
		ToStepName: to.Title,
		Timestamp:  time.Now(),
		ActionType: actionFor(to.StepType),
	}
	toPos := to.Position
	entry.ToPosition = &toPos
	if from != nil {
		fromID := from.ID
		fromPos := from.Position
		entry.FromStepID = &fromID
		entry.FromStepName = from.Title
		entry.FromPosition = &fromPos
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.history.Append(txCtx, entry); err != nil {
			return err
		}
		return s.cards.UpdateStep(txCtx, card.ID, to.ID)
	})
	if err != nil {
		s.logger.Error("failed to move card",
			zap.String("card_id", card.ID),
			zap.String("to_step", to.ID),
			zap.Error(err))
		return err
	}

	card.StepID = to.ID
	s.applyStepDefaults(ctx, card, to)

	s.logger.Info("card moved",
		zap.String("card_id", card.ID),
		zap.String("to_step", to.ID),
		zap.String("action", entry.ActionType))
	return nil
}

// applyStepDefaults auto-assigns the target step's default responsible user
// and team when the card has none. Best effort: a failure here does not undo
// the move.
func (s *cardServiceImpl) applyStepDefaults(ctx context.Context, card *models.Card, step *models.Step) {
	changed := false
	if card.AssigneeUserID == nil && step.DefaultAssigneeID != nil {
		card.AssigneeUserID = step.DefaultAssigneeID
		changed = true
	}
	if card.AssigneeTeamID == nil && step.DefaultTeamID != nil {
		card.AssigneeTeamID = step.DefaultTeamID
		changed = true
	}
	if !changed {
		return
	}
	card.UpdatedAt = time.Now()
	if err := s.cards.Update(ctx, card); err != nil {
		s.logger.Warn("failed to apply step assignment defaults",
			zap.String("card_id", card.ID), zap.Error(err))
	}
}

// DeleteCard removes the card unless its access state forbids mutation.
func (s *cardServiceImpl) DeleteCard(ctx context.Context, cardID string) error {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if err := s.ensureEditable(ctx, card); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, cardID); err != nil {
		s.logger.Error("failed to delete card", zap.String("card_id", cardID), zap.Error(err))
		return err
	}
	s.logger.Info("card deleted", zap.String("card_id", cardID))
	return nil
}

func (s *cardServiceImpl) ensureEditable(ctx context.Context, card *models.Card) error {
	steps, err := s.steps.StepsForFlow(ctx, card.FlowID)
	if err != nil {
		return err
	}
	pos := engine.Locate(steps, card.StepID)
	if engine.DeriveAccess(card, pos.Current, "").Disabled {
		return ErrCardDisabled
	}
	return nil
}

func (s *cardServiceImpl) acquireMove(cardID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.moving[cardID] {
		return nil, ErrCardBusy
	}
	s.moving[cardID] = true
	return func() {
		s.mu.Lock()
		delete(s.moving, cardID)
		s.mu.Unlock()
	}, nil
}

// actionFor maps the destination step type to the recorded action tag.
func actionFor(t models.StepType) string {
	switch t {
	case models.StepTypeFinisher:
		return models.ActionComplete
	case models.StepTypeFail:
		return models.ActionCancel
	default:
		return models.ActionMove
	}
}

// stripSystemKeys drops any value stored under a reserved system slug from
// the generic map before persisting.
func stripSystemKeys(fields map[string]models.FieldValue) map[string]models.FieldValue {
	out := make(map[string]models.FieldValue, len(fields))
	for k, v := range fields {
		switch k {
		case models.SlugAssignedTo, models.SlugAssignedTeam, models.SlugAgents:
			continue
		}
		out[k] = v
	}
	return out
}
