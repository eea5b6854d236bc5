package service

import (
	"context"
	"errors"
	"testing"

	"github.com/otoworks/otowork-backend/internal/types"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewProjectService(env.projects, nil)
	project := env.openProject(t, 50000, 120000)

	updated, err := svc.Update(ctx, project.ID, env.client.ID, UpdateProjectInput{
		BudgetMax:   int64Ptr(150000),
		Description: strPtr("Now with stems included"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != project.Title {
		t.Errorf("title = %q, want unchanged %q", updated.Title, project.Title)
	}
	if updated.BudgetMin != 50000 || updated.BudgetMax != 150000 {
		t.Errorf("budget = %d-%d, want 50000-150000", updated.BudgetMin, updated.BudgetMax)
	}
	if updated.Description == nil || *updated.Description != "Now with stems included" {
		t.Errorf("description = %v, want set", updated.Description)
	}
}

func TestUpdateValidatesMergedBudget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewProjectService(env.projects, nil)
	project := env.openProject(t, 50000, 120000)

	// 40000 is below the existing minimum, so the merged range inverts.
	_, err := svc.Update(ctx, project.ID, env.client.ID, UpdateProjectInput{BudgetMax: int64Ptr(40000)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Update(budgetMax=40000) = %v, want ErrInvalidInput", err)
	}

	_, err = svc.Update(ctx, project.ID, env.client.ID, UpdateProjectInput{Title: strPtr("")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Update(title=\"\") = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateFrozenAfterAccept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewProjectService(env.projects, nil)
	project := env.openProject(t, 50000, 120000)
	proposal := env.pendingProposal(t, project.ID, 75000)

	if _, err := env.proposalSvc.Accept(ctx, proposal.ID, env.client.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	_, err := svc.Update(ctx, project.ID, env.client.ID, UpdateProjectInput{Title: strPtr("New title")})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Update after accept = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProjectService(env.projects, nil)
	project := env.openProject(t, 50000, 120000)

	_, err := svc.Update(context.Background(), project.ID, env.creator.ID, UpdateProjectInput{Title: strPtr("Mine now")})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Update by non-owner = %v, want ErrForbidden", err)
	}
}

func TestCreateCategoryValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewProjectService(env.projects, nil)

	base := CreateProjectInput{Title: "Lyrics for a city pop single", BudgetMin: 10000, BudgetMax: 30000}

	base.Category = types.CategoryLyrics
	if _, err := svc.Create(ctx, env.client.ID, base); err != nil {
		t.Fatalf("Create(lyrics) = %v, want nil", err)
	}

	base.Category = "karaoke"
	if _, err := svc.Create(ctx, env.client.ID, base); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Create(karaoke) = %v, want ErrInvalidInput", err)
	}
}
