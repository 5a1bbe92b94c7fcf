package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"alcyxob/routine-progress/internal/storage"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const csvContentType = "text/csv"

// ExportResult carries a freshly written export and a link to download it.
type ExportResult struct {
	Export      domain.HistoryExport `json:"export"`
	DownloadURL string               `json:"downloadUrl"`
	ExpiresAt   time.Time            `json:"expiresAt"`
}

// ExportService writes a trainee's history to object storage as CSV.
type ExportService interface {
	ExportHistory(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID) (*ExportResult, error)
	ListExports(ctx context.Context, traineeID primitive.ObjectID) ([]domain.HistoryExport, error)
}

// exportService implements the ExportService interface.
type exportService struct {
	sessions   SessionService
	exportRepo repository.ExportRepository
	files      storage.FileStorage // nil when no bucket is configured
	urlExpiry  time.Duration
	settings   Settings
	log        *logger.Logger
}

// NewExportService creates a new instance of exportService. files may be nil,
// in which case every export fails with ErrExportUnavailable.
func NewExportService(
	sessions SessionService,
	exportRepo repository.ExportRepository,
	files storage.FileStorage,
	urlExpiry time.Duration,
	settings Settings,
	log *logger.Logger,
) ExportService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &exportService{
		sessions:   sessions,
		exportRepo: exportRepo,
		files:      files,
		urlExpiry:  urlExpiry,
		settings:   settings.withDefaults(),
		log:        log.With("component", "export"),
	}
}

func (s *exportService) ExportHistory(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID) (*ExportResult, error) {
	if s.files == nil {
		return nil, ErrExportUnavailable
	}
	// 1. Read the history (validates the trainee ID)
	history, err := s.sessions.History(ctx, traineeID, 0)
	if err != nil {
		return nil, err
	}

	// 2. Render CSV
	body, err := renderHistoryCSV(history)
	if err != nil {
		return nil, err
	}

	// 3. Upload, then record metadata
	objectKey := fmt.Sprintf("exports/%s/%s.csv", traineeID.Hex(), uuid.NewString())
	if err := s.files.PutObject(ctx, objectKey, csvContentType, bytes.NewReader(body), int64(len(body))); err != nil {
		return nil, fmt.Errorf("upload history export: %w", err)
	}

	export := &domain.HistoryExport{
		TraineeID:   traineeID,
		RequestedBy: actorID,
		ObjectKey:   objectKey,
		RowCount:    len(history),
		Size:        int64(len(body)),
		CreatedAt:   s.settings.Now().UTC(),
	}
	if _, err := s.exportRepo.Create(ctx, export); err != nil {
		if delErr := s.files.DeleteObject(ctx, objectKey); delErr != nil {
			s.log.Warn("Orphaned export object", "key", objectKey, "error", delErr)
		}
		return nil, err
	}

	// 4. Hand out a temporary link
	url, err := s.files.GeneratePresignedDownloadURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign history export: %w", err)
	}

	s.log.Info("History exported", "trainee_id", traineeID.Hex(), "rows", export.RowCount, "key", objectKey)
	return &ExportResult{
		Export:      *export,
		DownloadURL: url,
		ExpiresAt:   export.CreatedAt.Add(s.urlExpiry),
	}, nil
}

func (s *exportService) ListExports(ctx context.Context, traineeID primitive.ObjectID) ([]domain.HistoryExport, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	exports, err := s.exportRepo.ListByTrainee(ctx, traineeID)
	if err != nil {
		return nil, err
	}
	if exports == nil {
		exports = []domain.HistoryExport{}
	}
	return exports, nil
}

var historyCSVHeader = []string{
	"session_index", "kind", "day_index", "workout_date", "completed_at",
	"intensity", "label", "template_key", "template_name",
}

func renderHistoryCSV(history []domain.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(historyCSVHeader); err != nil {
		return nil, err
	}
	for _, h := range history {
		dayIndex := ""
		if h.DayIndex != nil {
			dayIndex = strconv.Itoa(*h.DayIndex)
		}
		row := []string{
			strconv.Itoa(h.SessionIndex),
			string(h.Kind),
			dayIndex,
			h.WorkoutDate.Format(time.DateOnly),
			h.CompletedAt.UTC().Format(time.RFC3339),
			string(h.Intensity),
			h.Label,
			h.TemplateKey,
			h.TemplateName,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
