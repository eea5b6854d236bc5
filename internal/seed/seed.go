// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	existing, _ := repos.UserRepo.FindByEmail(ctx, "yuki.tanaka@otowork.dev")
	if existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] 🌱 Creating initial data with real scenarios...")

	// ============================================
	// CREATE USERS (2 clients, 2 creators)
	// ============================================
	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// 1. YUKI - Indie game studio producer, posts projects
	yuki := &repository.User{
		Email:    "yuki.tanaka@otowork.dev",
		Password: string(password),
		Name:     "Yuki Tanaka",
		Role:     types.RoleClient,
	}
	repos.UserRepo.Create(ctx, yuki)

	// 2. KENJI - Podcast host, posts mixing work
	kenji := &repository.User{
		Email:    "kenji.sato@otowork.dev",
		Password: string(password),
		Name:     "Kenji Sato",
		Role:     types.RoleClient,
	}
	repos.UserRepo.Create(ctx, kenji)

	// 3. AOI - Composer and arranger
	aoi := &repository.User{
		Email:    "aoi.kimura@otowork.dev",
		Password: string(password),
		Name:     "Aoi Kimura",
		Role:     types.RoleCreator,
	}
	repos.UserRepo.Create(ctx, aoi)

	// 4. REN - Mixing and mastering engineer
	ren := &repository.User{
		Email:    "ren.hayashi@otowork.dev",
		Password: string(password),
		Name:     "Ren Hayashi",
		Role:     types.RoleCreator,
	}
	repos.UserRepo.Create(ctx, ren)

	log.Printf("✅ Created 4 users: Yuki (client), Kenji (client), Aoi (creator), Ren (creator)")

	// ============================================
	// SCENARIO 1: OPEN PROJECT WITH A PENDING PROPOSAL
	// Yuki needs a battle theme, Aoi has proposed
	// ============================================
	deadline := time.Now().AddDate(0, 1, 0)
	battleTheme := &repository.Project{
		ClientID:        yuki.ID,
		Title:           "Battle theme for roguelike RPG",
		Category:        types.CategoryComposition,
		Description:     stringPtr("Looking for a 2-3 minute orchestral battle loop. Reference tracks available on request."),
		Status:          types.ProjectOpen,
		BudgetMin:       50000,
		BudgetMax:       120000,
		Deadline:        &deadline,
		DeliveryFormats: []string{"wav", "stems"},
		MaxRevisions:    3,
	}
	repos.ProjectRepo.Create(ctx, battleTheme)

	proposal := &repository.Proposal{
		ProjectID:    battleTheme.ID,
		CreatorID:    aoi.ID,
		Amount:       75000,
		DeliveryDays: 14,
		Message:      "I can deliver a full orchestral loop with separated stems. Two revision rounds included.",
		Status:       types.ProposalPending,
	}
	repos.ProposalRepo.Create(ctx, proposal)

	// ============================================
	// SCENARIO 2: DRAFT PROJECT
	// Kenji is still writing up his podcast brief
	// ============================================
	podcastMix := &repository.Project{
		ClientID:        kenji.ID,
		Title:           "Weekly podcast mixing, 8 episodes",
		Category:        types.CategoryMixing,
		Description:     stringPtr("Ongoing mixing work for a tech interview podcast, roughly 60 minutes per episode."),
		Status:          types.ProjectDraft,
		BudgetMin:       20000,
		BudgetMax:       40000,
		DeliveryFormats: []string{"mp3", "wav"},
		MaxRevisions:    2,
	}
	repos.ProjectRepo.Create(ctx, podcastMix)

	// ============================================
	// SCENARIO 3: CREATOR WITH AN AVAILABLE BALANCE
	// Ren finished earlier work and can test withdrawals
	// ============================================
	repos.BalanceRepo.AddPending(ctx, ren.ID, 125000)
	repos.BalanceRepo.SettlePending(ctx, ren.ID, 125000)

	log.Println("✅ Created 2 projects, 1 pending proposal, 1 settled balance")
	log.Println("[Seed] 🌱 Seeding complete")
}

func stringPtr(s string) *string {
	return &s
}
