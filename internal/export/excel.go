// Package export writes a flow's board to a spreadsheet.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/albertobarcelos/nexflow/internal/application/port"
	"github.com/albertobarcelos/nexflow/internal/engine"
	"github.com/albertobarcelos/nexflow/internal/models"
)

// Exporter builds xlsx workbooks from flow data.
type Exporter struct {
	flows  port.FlowRepository
	cards  port.CardRepository
	logger *zap.Logger
}

// NewExporter creates a flow exporter.
func NewExporter(flows port.FlowRepository, cards port.CardRepository, logger *zap.Logger) *Exporter {
	return &Exporter{flows: flows, cards: cards, logger: logger}
}

var headers = []string{"Card", "Step", "Assignee", "Team", "Agents", "Value", "Created"}

// ExportFlow renders one worksheet per flow: a header row followed by one row
// per card with its title, current step and assignment columns. The caller
// owns the returned file and must close it.
func (e *Exporter) ExportFlow(ctx context.Context, flowID string) (*excelize.File, error) {
	flow, err := e.flows.GetByID(ctx, flowID)
	if err != nil {
		return nil, err
	}
	cards, err := e.cards.ListByFlow(ctx, flowID)
	if err != nil {
		return nil, err
	}

	sorted := engine.SortSteps(flow.Steps)
	stepTitle := make(map[string]string, len(sorted))
	for _, s := range sorted {
		stepTitle[s.ID] = s.Title
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, flow.Name); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	sheet = flow.Name

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, card := range cards {
		row := i + 2
		values := []interface{}{
			card.Title,
			stepTitle[card.StepID],
			derefOr(card.AssigneeUserID, ""),
			derefOr(card.AssigneeTeamID, ""),
			joinAgents(card),
			valueOrBlank(card),
			card.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write card row: %w", err)
			}
		}
	}

	e.logger.Info("flow exported",
		zap.String("flow_id", flowID),
		zap.Int("cards", len(cards)))
	return f, nil
}

func derefOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

func joinAgents(card *models.Card) string {
	out := ""
	for i, id := range card.AgentIDs {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}

func valueOrBlank(card *models.Card) interface{} {
	if card.Value != nil {
		return *card.Value
	}
	return ""
}
