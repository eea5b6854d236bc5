package service

import (
	"context"
	"log"
	"time"

	"github.com/otoworks/otowork-backend/internal/db"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
)

// ============================================
// Project Service
// ============================================

type CreateProjectInput struct {
	Title           string
	Category        string
	Description     *string
	BudgetMin       int64
	BudgetMax       int64
	Deadline        *time.Time
	DeliveryFormats []string
	MaxRevisions    int
	Publish         bool
}

// UpdateProjectInput carries a partial update: nil fields keep their
// current value. Category is fixed at creation.
type UpdateProjectInput struct {
	Title           *string
	Description     *string
	BudgetMin       *int64
	BudgetMax       *int64
	Deadline        *time.Time
	DeliveryFormats []string
	MaxRevisions    *int
}

type ProjectService interface {
	Create(ctx context.Context, clientID string, input CreateProjectInput) (*repository.Project, error)
	GetByID(ctx context.Context, id string) (*repository.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter) ([]*repository.Project, error)
	Update(ctx context.Context, id, clientID string, input UpdateProjectInput) (*repository.Project, error)
	Publish(ctx context.Context, id, clientID string) (*repository.Project, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	cache       *db.RedisDB
}

func NewProjectService(projectRepo repository.ProjectRepository, cache *db.RedisDB) ProjectService {
	return &projectService{projectRepo: projectRepo, cache: cache}
}

const openProjectsCacheKey = "projects:open"

func (s *projectService) Create(ctx context.Context, clientID string, input CreateProjectInput) (*repository.Project, error) {
	if input.Title == "" || !types.IsValidCategory(input.Category) {
		return nil, ErrInvalidInput
	}
	if input.BudgetMin <= 0 || input.BudgetMax < input.BudgetMin {
		return nil, ErrInvalidInput
	}
	if input.MaxRevisions < 0 {
		return nil, ErrInvalidInput
	}

	status := types.ProjectDraft
	if input.Publish {
		status = types.ProjectOpen
	}

	project := &repository.Project{
		ClientID:        clientID,
		Title:           input.Title,
		Category:        input.Category,
		Description:     input.Description,
		Status:          status,
		BudgetMin:       input.BudgetMin,
		BudgetMax:       input.BudgetMax,
		Deadline:        input.Deadline,
		DeliveryFormats: input.DeliveryFormats,
		MaxRevisions:    input.MaxRevisions,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.invalidateListing(ctx)
	return project, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	return project, nil
}

// List serves the browse page. The unfiltered open-projects listing is
// read-heavy and cached; everything else goes straight to the database.
func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter) ([]*repository.Project, error) {
	cacheable := s.cache != nil &&
		filter.Status == types.ProjectOpen && filter.Category == "" && filter.ClientID == ""

	if cacheable {
		var cached []*repository.Project
		if err := s.cache.GetCache(ctx, openProjectsCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	projects, err := s.projectRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.SetCache(ctx, openProjectsCacheKey, projects, 30*time.Second); err != nil {
			log.Printf("[Project] Failed to cache listing: %v", err)
		}
	}
	return projects, nil
}

func (s *projectService) Update(ctx context.Context, id, clientID string, input UpdateProjectInput) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != clientID {
		return nil, ErrForbidden
	}
	// Terms are frozen once a proposal has been accepted.
	if project.Status != types.ProjectDraft && project.Status != types.ProjectOpen {
		return nil, ErrInvalidTransition
	}

	if input.Title != nil {
		project.Title = *input.Title
	}
	if input.Description != nil {
		project.Description = input.Description
	}
	if input.BudgetMin != nil {
		project.BudgetMin = *input.BudgetMin
	}
	if input.BudgetMax != nil {
		project.BudgetMax = *input.BudgetMax
	}
	if input.Deadline != nil {
		project.Deadline = input.Deadline
	}
	if input.DeliveryFormats != nil {
		project.DeliveryFormats = input.DeliveryFormats
	}
	if input.MaxRevisions != nil {
		project.MaxRevisions = *input.MaxRevisions
	}

	// Validate the merged result, not just the changed fields.
	if project.Title == "" {
		return nil, ErrInvalidInput
	}
	if project.BudgetMin <= 0 || project.BudgetMax < project.BudgetMin {
		return nil, ErrInvalidInput
	}
	if project.MaxRevisions < 0 {
		return nil, ErrInvalidInput
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.invalidateListing(ctx)
	return project, nil
}

func (s *projectService) Publish(ctx context.Context, id, clientID string) (*repository.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrNotFound
	}
	if project.ClientID != clientID {
		return nil, ErrForbidden
	}

	ok, err := s.projectRepo.TransitionStatus(ctx, id, types.ProjectDraft, types.ProjectOpen)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidTransition
	}

	project.Status = types.ProjectOpen
	s.invalidateListing(ctx)
	return project, nil
}

func (s *projectService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "projects:*"); err != nil {
		log.Printf("[Project] Failed to invalidate listing cache: %v", err)
	}
}
