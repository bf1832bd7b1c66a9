// Package scheduler runs the unattended periodic backup loop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	accountrepo "mailvault/internal/account/repository"
	backupdomain "mailvault/internal/backup/domain"
	"mailvault/internal/backup/usecase"
	"mailvault/internal/errs"
	"mailvault/pkg/config"

	"github.com/sirupsen/logrus"
)

// Syncer is the slice of the sync engine the scheduler drives.
type Syncer interface {
	RunSync(ctx context.Context, accountID string, params usecase.SyncParams) (*backupdomain.SyncSession, error)
}

// Scheduler periodically scans accounts and triggers a bounded incremental
// sync for any whose last successful sync is stale. Cycles never overlap.
type Scheduler struct {
	accountRepo accountrepo.AccountRepository
	syncer      Syncer
	cfg         *config.Config
	log         *logrus.Logger

	stopChan chan struct{}
	stopOnce sync.Once

	mu            sync.Mutex
	cycleInFlight bool

	// Cumulative stats, exposed for the status surface.
	totalCycles  int
	totalSynced  int
	totalErrors  int
	lastCycleAt  time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(accountRepo accountrepo.AccountRepository, syncer Syncer, cfg *config.Config, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		accountRepo: accountRepo,
		syncer:      syncer,
		cfg:         cfg,
		log:         log,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the scheduler loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.WithField("interval", s.cfg.SchedulerInterval).Info("starting background sync scheduler")

	go func() {
		ticker := time.NewTicker(s.cfg.SchedulerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.stopChan:
				s.log.Info("background sync scheduler stopped")
				return
			}
		}
	}()
}

// Stop requests shutdown; observed within one tick.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// runCycle scans all syncable accounts once. If the previous cycle is still
// working, the whole cycle is skipped rather than queued.
func (s *Scheduler) runCycle() {
	s.mu.Lock()
	if s.cycleInFlight {
		s.mu.Unlock()
		s.log.Info("previous sync cycle still in progress, skipping this cycle")
		return
	}
	s.cycleInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cycleInFlight = false
		s.mu.Unlock()
	}()

	started := time.Now()
	accounts, err := s.accountRepo.FindSyncable()
	if err != nil {
		s.log.WithError(err).Error("failed to list accounts for sync cycle")
		return
	}

	synced := 0
	for i := range accounts {
		account := &accounts[i]
		if !s.needsSync(account.LastSync, started) {
			continue
		}

		log := s.log.WithField("account_id", account.ID)
		log.Info("account is stale, triggering scheduled sync")

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ScheduledSyncTimeout)
		session, err := s.syncer.RunSync(ctx, account.ID, usecase.SyncParams{
			Kind:      backupdomain.SyncKindIncremental,
			Source:    backupdomain.SyncSourceScheduled,
			MaxEmails: s.cfg.ScheduledSyncCap,
		})
		cancel()

		switch {
		case errors.Is(err, errs.ErrSyncAlreadyActive):
			// The account is syncing on its own; leave it alone.
			log.Info("sync already active, skipping scheduled run")
		case err != nil:
			s.mu.Lock()
			s.totalErrors++
			s.mu.Unlock()
			log.WithError(err).Error("scheduled sync failed")
		default:
			synced++
			log.WithField("emails_synced", session.EmailsSynced).Info("scheduled sync finished")
		}
	}

	s.mu.Lock()
	s.totalCycles++
	s.totalSynced += synced
	s.lastCycleAt = time.Now()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"accounts_scanned": len(accounts),
		"accounts_synced":  synced,
		"duration":         time.Since(started).Round(time.Millisecond),
	}).Info("sync cycle completed")
}

// needsSync treats a never-synced account as infinitely stale.
func (s *Scheduler) needsSync(lastSync *time.Time, now time.Time) bool {
	if lastSync == nil {
		return true
	}
	return now.Sub(*lastSync) > s.cfg.AccountStaleAfter
}

// Stats is a snapshot of the scheduler's cumulative counters.
type Stats struct {
	TotalCycles int        `json:"total_cycles"`
	TotalSynced int        `json:"total_synced"`
	TotalErrors int        `json:"total_errors"`
	LastCycleAt *time.Time `json:"last_cycle_at,omitempty"`
	CycleActive bool       `json:"cycle_active"`
}

func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		TotalCycles: s.totalCycles,
		TotalSynced: s.totalSynced,
		TotalErrors: s.totalErrors,
		CycleActive: s.cycleInFlight,
	}
	if !s.lastCycleAt.IsZero() {
		t := s.lastCycleAt
		stats.LastCycleAt = &t
	}
	return stats
}
