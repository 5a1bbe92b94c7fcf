package service

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/logger"
	"alcyxob/routine-progress/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateInput describes a new catalog template version.
type TemplateInput struct {
	ExternalKey string
	Name        string
	Items       []domain.RoutineItem
}

// AssignResult is returned by a successful assignment.
type AssignResult struct {
	SnapshotID      primitive.ObjectID `json:"snapshotId"`
	TemplateID      primitive.ObjectID `json:"templateId"`
	ExternalKey     string             `json:"externalKey"`
	CopiedItemCount int                `json:"copiedItemCount"`
}

// RoutineView is a trainee's active snapshot with its items in (day, order) order.
type RoutineView struct {
	Routine         domain.TraineeRoutine       `json:"routine"`
	TemplateKey     string                      `json:"templateKey"`
	TemplateName    string                      `json:"templateName"`
	TemplateVersion int                         `json:"templateVersion"`
	CycleLength     int                         `json:"cycleLength"`
	Items           []domain.TraineeRoutineItem `json:"items"`
}

// RoutineService manages the template catalog and trainee snapshots.
type RoutineService interface {
	CreateTemplate(ctx context.Context, input TemplateInput) (*domain.RoutineTemplate, error)
	ListTemplates(ctx context.Context, includeInactive bool) ([]domain.RoutineTemplate, error)
	// Assign copies the active template for externalKey into a new active
	// snapshot for the trainee and resets the trainee's weekly state.
	Assign(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, externalKey string) (*AssignResult, error)
	GetActiveRoutine(ctx context.Context, traineeID primitive.ObjectID) (*RoutineView, error)
}

// routineService implements the RoutineService interface.
type routineService struct {
	templateRepo repository.TemplateRepository
	routineRepo  repository.TraineeRoutineRepository
	stateRepo    repository.WeeklyStateRepository
	tx           repository.Transactor
	settings     Settings
	log          *logger.Logger
}

// NewRoutineService creates a new instance of routineService.
func NewRoutineService(
	templateRepo repository.TemplateRepository,
	routineRepo repository.TraineeRoutineRepository,
	stateRepo repository.WeeklyStateRepository,
	tx repository.Transactor,
	settings Settings,
	log *logger.Logger,
) RoutineService {
	return &routineService{
		templateRepo: templateRepo,
		routineRepo:  routineRepo,
		stateRepo:    stateRepo,
		tx:           tx,
		settings:     settings.withDefaults(),
		log:          log.With("component", "routine"),
	}
}

// CreateTemplate publishes a new version for the key and retires the previous one.
func (s *routineService) CreateTemplate(ctx context.Context, input TemplateInput) (*domain.RoutineTemplate, error) {
	// 1. Validate Inputs
	key := domain.NormalizeTemplateKey(input.ExternalKey)
	name := strings.TrimSpace(input.Name)
	if key == "" || name == "" {
		return nil, fmt.Errorf("%w: externalKey and name are required", ErrInvalidTemplate)
	}
	if len(input.Items) == 0 {
		return nil, ErrTemplateEmpty
	}
	items := make([]domain.TemplateItem, 0, len(input.Items))
	for i, it := range input.Items {
		if it.DayIndex < 1 || it.OrderIndex < 0 || strings.TrimSpace(it.ExerciseKey) == "" {
			return nil, fmt.Errorf("%w: item %d needs dayIndex >= 1, orderIndex >= 0 and an exerciseKey", ErrInvalidTemplate, i)
		}
		items = append(items, domain.TemplateItem{RoutineItem: it})
	}
	if !domain.DaysContiguous(input.Items) {
		return nil, fmt.Errorf("%w: day indexes must run 1..%d without gaps", ErrInvalidTemplate, domain.CycleLength(input.Items))
	}

	tpl := &domain.RoutineTemplate{
		ExternalKey: key,
		Name:        name,
		Active:      true,
		CreatedAt:   s.settings.Now().UTC(),
	}

	// 2. Retire the current version and insert the new one atomically
	err := s.tx.WithinTx(ctx, repository.TemplateLockKey(key), func(ctx context.Context) error {
		latest, err := s.templateRepo.LatestVersion(ctx, key)
		if err != nil {
			return err
		}
		tpl.Version = latest + 1
		if err := s.templateRepo.DeactivateByKey(ctx, key); err != nil {
			return err
		}
		_, err = s.templateRepo.Create(ctx, tpl, items)
		return err
	})
	if err != nil {
		return nil, txError(err)
	}

	s.log.Info("Template published", "key", key, "version", tpl.Version, "items", len(items))
	return tpl, nil
}

func (s *routineService) ListTemplates(ctx context.Context, includeInactive bool) ([]domain.RoutineTemplate, error) {
	templates, err := s.templateRepo.List(ctx, !includeInactive)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []domain.RoutineTemplate{}
	}
	return templates, nil
}

func (s *routineService) Assign(ctx context.Context, traineeID primitive.ObjectID, actorID *primitive.ObjectID, externalKey string) (*AssignResult, error) {
	// 1. Validate Inputs
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	key := domain.NormalizeTemplateKey(externalKey)
	if key == "" {
		return nil, fmt.Errorf("%w: template key is required", ErrInvalidTemplate)
	}

	now := s.settings.Now().UTC()
	today := s.settings.today()
	var result *AssignResult

	// 2. Everything below commits or rolls back together
	err := s.tx.WithinTx(ctx, repository.TraineeLockKey(traineeID), func(ctx context.Context) error {
		// 2a. Preconditions
		tpl, err := s.templateRepo.GetActiveByKey(ctx, key)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTemplateUnavailable
			}
			return err
		}
		templateItems, err := s.templateRepo.ListItems(ctx, tpl.ID)
		if err != nil {
			return err
		}
		if len(templateItems) == 0 {
			return ErrTemplateEmpty
		}

		// 2b. Retire the previous snapshot
		if _, err := s.routineRepo.DeactivateActive(ctx, traineeID); err != nil {
			return err
		}

		// 2c. New snapshot header and a verbatim copy of every item
		routine := &domain.TraineeRoutine{
			TraineeID:  traineeID,
			TemplateID: tpl.ID,
			Active:     true,
			AssignedAt: now,
			AssignedBy: actorID,
		}
		routineID, err := s.routineRepo.Create(ctx, routine)
		if err != nil {
			return err
		}
		copies := make([]domain.TraineeRoutineItem, len(templateItems))
		for i, it := range templateItems {
			copies[i] = domain.TraineeRoutineItem{RoutineID: routineID, RoutineItem: it.RoutineItem}
		}
		if err := s.routineRepo.InsertItems(ctx, copies); err != nil {
			return err
		}

		// 2d. Fresh cycle for the new routine
		if err := s.stateRepo.Save(ctx, domain.NewWeeklyState(traineeID, today)); err != nil {
			return err
		}

		result = &AssignResult{
			SnapshotID:      routineID,
			TemplateID:      tpl.ID,
			ExternalKey:     tpl.ExternalKey,
			CopiedItemCount: len(copies),
		}
		return nil
	})
	if err != nil {
		return nil, txError(err)
	}

	s.log.Info("Routine assigned", "trainee_id", traineeID.Hex(), "key", key, "snapshot_id", result.SnapshotID.Hex(), "items", result.CopiedItemCount)
	return result, nil
}

func (s *routineService) GetActiveRoutine(ctx context.Context, traineeID primitive.ObjectID) (*RoutineView, error) {
	if traineeID == primitive.NilObjectID {
		return nil, ErrInvalidTraineeID
	}
	routine, err := s.routineRepo.GetActive(ctx, traineeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveRoutine
		}
		return nil, err
	}
	items, err := s.routineRepo.ListItems(ctx, routine.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.TraineeRoutineItem{}
	}

	view := &RoutineView{
		Routine:     *routine,
		CycleLength: cycleLengthOf(items),
		Items:       items,
	}
	// Snapshots outlive catalog changes; a missing template only loses the labels.
	tpl, err := s.templateRepo.GetByID(ctx, routine.TemplateID)
	switch {
	case err == nil:
		view.TemplateKey, view.TemplateName, view.TemplateVersion = tpl.ExternalKey, tpl.Name, tpl.Version
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	return view, nil
}
