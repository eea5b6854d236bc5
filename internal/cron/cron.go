package cron

import (
	"context"
	"log"
	"time"

	"github.com/otoworks/otowork-backend/internal/notification"
	"github.com/otoworks/otowork-backend/internal/repository"
	"github.com/otoworks/otowork-backend/internal/service"
	"github.com/otoworks/otowork-backend/internal/types"
	"github.com/robfig/cron/v3"
)

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron             *cron.Cron
	services         *service.Services
	notifSvc         *notification.Service
	projectRepo      repository.ProjectRepository
	escrowRepo       repository.EscrowRepository
	proposalRepo     repository.ProposalRepository
	notificationRepo repository.NotificationRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(
	services *service.Services,
	notifSvc *notification.Service,
	projectRepo repository.ProjectRepository,
	escrowRepo repository.EscrowRepository,
	proposalRepo repository.ProposalRepository,
	notificationRepo repository.NotificationRepository,
) *Scheduler {
	return &Scheduler{
		cron:             cron.New(),
		services:         services,
		notifSvc:         notifSvc,
		projectRepo:      projectRepo,
		escrowRepo:       escrowRepo,
		proposalRepo:     proposalRepo,
		notificationRepo: notificationRepo,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every 5 minutes - hand pending withdrawals to the payout processor
	s.cron.AddFunc("*/5 * * * *", func() {
		log.Println("[Cron] Running withdrawal dispatch...")
		s.dispatchWithdrawals()
	})

	// Run every day at 9 AM - deadline reminders for in-progress projects
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running deadline reminder check...")
		s.checkDeadlineReminders()
	})

	// Clean up old notifications - Run every Sunday at midnight
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running notification cleanup...")
		s.cleanupOldNotifications()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

func (s *Scheduler) dispatchWithdrawals() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := s.services.Withdrawal.DispatchPending(ctx)
	if err != nil {
		log.Printf("[Cron] Withdrawal dispatch failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("[Cron] Dispatched %d withdrawals for processing", count)
	}
}

// checkDeadlineReminders notifies both parties of projects due within 48 hours
func (s *Scheduler) checkDeadlineReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	projects, err := s.projectRepo.FindAll(ctx, repository.ProjectFilter{Status: types.ProjectInProgress})
	if err != nil {
		log.Printf("[Cron] Failed to load in-progress projects: %v", err)
		return
	}

	now := time.Now()
	cutoff := now.Add(48 * time.Hour)

	for _, p := range projects {
		if p.Deadline == nil || p.Deadline.Before(now) || p.Deadline.After(cutoff) {
			continue
		}

		s.notifSvc.SendDeadlineReminder(ctx, p.ClientID, p.Title, p.ID, *p.Deadline)

		tx, err := s.escrowRepo.FindByProjectID(ctx, p.ID)
		if err != nil || tx == nil {
			continue
		}
		proposal, err := s.proposalRepo.FindByID(ctx, tx.ProposalID)
		if err != nil || proposal == nil {
			continue
		}
		s.notifSvc.SendDeadlineReminder(ctx, proposal.CreatorID, p.Title, p.ID, *p.Deadline)
	}
}

func (s *Scheduler) cleanupOldNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	deleted, err := s.notificationRepo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		log.Printf("[Cron] Notification cleanup failed: %v", err)
		return
	}
	log.Printf("[Cron] Deleted %d old notifications", deleted)
}
