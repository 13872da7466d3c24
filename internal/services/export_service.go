package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

const (
	exportSummarySheet      = "Resumen"
	exportObservationsSheet = "Observaciones"
)

type exportService struct {
	repo            repositories.Repository
	workshopService WorkshopService
	logger          *slog.Logger
}

func NewExportService(repo repositories.Repository, workshopService WorkshopService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:            repo,
		workshopService: workshopService,
		logger:          logger,
	}
}

// ExportWorkshopObservations builds an xlsx workbook with a summary sheet and
// one row per answered question across all observations of the workshop.
func (s *exportService) ExportWorkshopObservations(ctx context.Context, workshopID uint, userID uint) ([]byte, string, error) {
	canAccess, err := s.workshopService.CanAccess(ctx, workshopID, userID)
	if err != nil {
		return nil, "", err
	}
	if !canAccess {
		return nil, "", ErrWorkshopNotFound
	}

	workshop, err := s.repo.Workshop().GetByIDWithRelations(ctx, nil, workshopID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrWorkshopNotFound
		}
		return nil, "", fmt.Errorf("failed to load workshop: %w", err)
	}

	records, err := s.repo.Observation().ListByWorkshop(ctx, nil, workshopID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list observations: %w", err)
	}
	if len(records) == 0 {
		return nil, "", ErrExportNotAvailable
	}

	participantNames := make(map[uint]string, len(workshop.Participants))
	for _, p := range workshop.Participants {
		participantNames[p.ID] = p.Name
	}
	sessionPrompts := make(map[uint]string, len(workshop.Sessions))
	for _, sess := range workshop.Sessions {
		sessionPrompts[sess.ID] = sess.Prompt
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeSummarySheet(f, workshop, len(records)); err != nil {
		return nil, "", err
	}
	if err := s.writeObservationsSheet(f, records, participantNames, sessionPrompts); err != nil {
		return nil, "", err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("taller_%d_observaciones_%s.xlsx", workshopID, time.Now().Format("2006-01-02"))
	s.logger.Info("Workshop export generated", "workshop_id", workshopID, "records", len(records), "user_id", userID)

	return buf.Bytes(), filename, nil
}

func (s *exportService) writeSummarySheet(f *excelize.File, workshop *models.Workshop, recordCount int) error {
	if err := f.SetSheetName(f.GetSheetName(0), exportSummarySheet); err != nil {
		return fmt.Errorf("failed to set up summary sheet: %w", err)
	}

	objective := ""
	if workshop.Objective != nil {
		objective = *workshop.Objective
	}

	rows := [][]interface{}{
		{"Taller", workshop.Name},
		{"Objetivo", objective},
		{"Participantes", len(workshop.Participants)},
		{"Sesiones", len(workshop.Sessions)},
		{"Observaciones", recordCount},
		{"Exportado", time.Now().Format("2006-01-02 15:04")},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(exportSummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	return nil
}

func (s *exportService) writeObservationsSheet(f *excelize.File, records []*models.ObservationalRecord, participantNames, sessionPrompts map[uint]string) error {
	if _, err := f.NewSheet(exportObservationsSheet); err != nil {
		return fmt.Errorf("failed to create observations sheet: %w", err)
	}

	header := []interface{}{"Participante", "Sesión", "Versión", "Fecha", "Categoría", "Subcategoría", "Pregunta", "Respuesta", "Notas"}
	if err := f.SetSheetRow(exportObservationsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	for _, record := range records {
		notes := ""
		if record.FreeformNotes != nil {
			notes = *record.FreeformNotes
		}
		for _, q := range models.AllQuestions() {
			answer := record.GetAnswer(q.ID)
			if answer == "" {
				continue
			}
			label := answer
			if l, ok := models.AnswerOptions[models.AnswerValue(answer)]; ok {
				label = l
			}
			row := []interface{}{
				participantNames[record.ParticipantID],
				sessionPrompts[record.SessionID],
				record.Version,
				record.CreatedAt.Format("2006-01-02 15:04"),
				q.Category,
				q.Subcategory,
				q.Text,
				label,
				notes,
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetSheetRow(exportObservationsSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write observation row: %w", err)
			}
			rowNum++
		}
	}
	return nil
}
