package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountdomain "mailvault/internal/account/domain"
	accountrepo "mailvault/internal/account/repository"
	backupdomain "mailvault/internal/backup/domain"
	"mailvault/internal/backup/repository"
	"mailvault/internal/errs"
	"mailvault/pkg/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// persistFailureLimit aborts a session when storage writes keep failing back
// to back; isolated write failures only count as per-message errors.
const persistFailureLimit = 5

// loopOutcome is the tri-state result of the page loop. Stop requests are an
// expected condition, not an error, so they never travel through error values.
type loopOutcome int

const (
	loopDone loopOutcome = iota
	loopStopRequested
	loopCapReached
)

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	accountRepo accountrepo.AccountRepository
	emailRepo   repository.EmailRepository
	sessionRepo repository.SyncSessionRepository
	provider    backupdomain.MailProvider
	cfg         *config.Config
	registry    *activeRegistry
	log         *logrus.Logger
}

// NewSyncUsecase creates a new instance of syncUsecase
func NewSyncUsecase(
	accountRepo accountrepo.AccountRepository,
	emailRepo repository.EmailRepository,
	sessionRepo repository.SyncSessionRepository,
	provider backupdomain.MailProvider,
	cfg *config.Config,
	log *logrus.Logger,
) SyncUsecase {
	return &syncUsecase{
		accountRepo: accountRepo,
		emailRepo:   emailRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		cfg:         cfg,
		registry:    newActiveRegistry(),
		log:         log,
	}
}

func (u *syncUsecase) StartSync(ctx context.Context, accountID string, params SyncParams) (string, error) {
	account, session, err := u.begin(accountID, params)
	if err != nil {
		return "", err
	}

	go func() {
		// The HTTP request context ends when the response is written; the
		// sync keeps its own lifetime and is bounded by stop requests.
		if _, err := u.run(context.Background(), account, session); err != nil {
			u.log.WithFields(logrus.Fields{
				"account_id": accountID,
				"session_id": session.ID,
			}).WithError(err).Error("background sync failed")
		}
	}()

	return session.ID, nil
}

func (u *syncUsecase) RunSync(ctx context.Context, accountID string, params SyncParams) (*backupdomain.SyncSession, error) {
	account, session, err := u.begin(accountID, params)
	if err != nil {
		return nil, err
	}
	return u.run(ctx, account, session)
}

// begin enforces single-flight and creates the session record. The session id
// is reserved in the registry before the record exists so two concurrent
// starts can never both create one.
func (u *syncUsecase) begin(accountID string, params SyncParams) (*accountdomain.Account, *backupdomain.SyncSession, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, errs.ErrAccountNotFound
	}
	if !account.HasCredentials() {
		return nil, nil, errs.ErrNoCredentials
	}

	sessionID := uuid.New().String()
	if !u.registry.acquire(accountID, sessionID) {
		return nil, nil, errs.ErrSyncAlreadyActive
	}

	query, err := u.buildQuery(params)
	if err != nil {
		u.registry.release(accountID, sessionID)
		return nil, nil, err
	}

	session := &backupdomain.SyncSession{
		ID:          sessionID,
		AccountID:   accountID,
		SyncKind:    params.Kind,
		SyncSource:  params.Source,
		MaxEmails:   params.MaxEmails,
		StartDate:   params.StartDate,
		EndDate:     params.EndDate,
		QueryFilter: query,
	}
	if err := u.sessionRepo.Create(session); err != nil {
		u.registry.release(accountID, sessionID)
		return nil, nil, err
	}

	u.log.WithFields(logrus.Fields{
		"account_id": accountID,
		"session_id": sessionID,
		"kind":       params.Kind,
		"query":      query,
	}).Info("sync session started")

	return account, session, nil
}

// buildQuery selects the Gmail list filter for the strategy.
func (u *syncUsecase) buildQuery(params SyncParams) (string, error) {
	switch params.Kind {
	case backupdomain.SyncKindIncremental:
		latest, ok, err := u.emailRepo.LatestReceivedAt()
		if err != nil {
			return "", err
		}
		if !ok {
			// Empty store: fall back to a full listing.
			return "", nil
		}
		return fmt.Sprintf("after:%d", latest.Unix()), nil
	case backupdomain.SyncKindFull:
		return "", nil
	case backupdomain.SyncKindDateRange:
		if params.StartDate == "" {
			return "", fmt.Errorf("date_range sync requires a start date")
		}
		query := "after:" + params.StartDate
		if params.EndDate != "" {
			query += " before:" + params.EndDate
		}
		return query, nil
	default:
		return "", fmt.Errorf("unknown sync kind %q", params.Kind)
	}
}

// syncCounters accumulates progress for one run.
type syncCounters struct {
	processed int
	synced    int
	skipped   int
	batches   int
	apiCalls  int
	errors    int
	lastError string
}

func (c *syncCounters) progress() backupdomain.SyncProgress {
	p := backupdomain.SyncProgress{
		EmailsProcessed:  &c.processed,
		EmailsSynced:     &c.synced,
		EmailsSkipped:    &c.skipped,
		BatchesProcessed: &c.batches,
		TotalAPICalls:    &c.apiCalls,
		ErrorCount:       &c.errors,
	}
	if c.lastError != "" {
		p.LastErrorMessage = &c.lastError
	}
	return p
}

// run drives the page loop to a terminal state. The registry entries are
// released unconditionally so no account can stay marked active after a crash
// of the loop.
func (u *syncUsecase) run(ctx context.Context, account *accountdomain.Account, session *backupdomain.SyncSession) (result *backupdomain.SyncSession, err error) {
	defer u.registry.release(account.ID, session.ID)

	creds := backupdomain.Credentials{
		AccessToken:  account.GmailAccessToken,
		RefreshToken: account.GmailRefreshToken,
		Expiry:       account.GmailTokenExpiry,
	}
	onRefresh := u.tokenUpdateFunc(account.ID)

	log := u.log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"session_id": session.ID,
	})

	counters, outcome, loopErr := u.pageLoop(ctx, creds, session, onRefresh, log)

	// Flush whatever the loop counted before deciding the terminal state.
	if upErr := u.sessionRepo.UpdateProgress(session.ID, counters.progress()); upErr != nil {
		log.WithError(upErr).Warn("failed to record final progress")
	}

	switch {
	case loopErr != nil:
		if failErr := u.sessionRepo.Fail(session.ID, loopErr.Error()); failErr != nil {
			log.WithError(failErr).Error("failed to mark session failed")
		}
		log.WithError(loopErr).Error("sync failed")
		err = loopErr
	case outcome == loopStopRequested:
		msg := fmt.Sprintf("sync stopped by request after %d batches, %d emails synced", counters.batches, counters.synced)
		if cancelErr := u.sessionRepo.Cancel(session.ID, msg); cancelErr != nil {
			log.WithError(cancelErr).Error("failed to mark session cancelled")
		}
		log.WithField("emails_synced", counters.synced).Info("sync cancelled")
	default:
		if compErr := u.sessionRepo.Complete(session.ID, counters.progress()); compErr != nil {
			log.WithError(compErr).Error("failed to mark session completed")
		}
		if lsErr := u.accountRepo.UpdateLastSync(account.ID, time.Now()); lsErr != nil {
			log.WithError(lsErr).Warn("failed to stamp last_sync")
		}
		log.WithFields(logrus.Fields{
			"emails_synced":  counters.synced,
			"emails_skipped": counters.skipped,
			"batches":        counters.batches,
		}).Info("sync completed")
	}

	result, findErr := u.sessionRepo.FindByID(session.ID)
	if findErr != nil {
		return nil, findErr
	}
	return result, err
}

// pageLoop walks the remote pagination cursor in order, one page at a time.
// Per-message failures become counters and log lines; only session-level
// conditions terminate the loop.
func (u *syncUsecase) pageLoop(
	ctx context.Context,
	creds backupdomain.Credentials,
	session *backupdomain.SyncSession,
	onRefresh backupdomain.TokenUpdateFunc,
	log *logrus.Entry,
) (*syncCounters, loopOutcome, error) {
	counters := &syncCounters{}
	pageToken := ""
	consecutivePersistFailures := 0

	for {
		batchSize := int64(u.cfg.SyncBatchSize)
		if session.MaxEmails > 0 {
			remaining := session.MaxEmails - counters.synced
			if remaining <= 0 {
				return counters, loopCapReached, nil
			}
			if int64(remaining) < batchSize {
				batchSize = int64(remaining)
			}
		}

		ids, nextToken, err := u.provider.ListMessageIDs(ctx, creds, session.QueryFilter, pageToken, batchSize, onRefresh)
		counters.apiCalls++
		if err != nil {
			return counters, loopDone, fmt.Errorf("listing messages: %w", err)
		}
		if len(ids) == 0 {
			return counters, loopDone, nil
		}

		for _, id := range ids {
			counters.processed++

			exists, err := u.emailRepo.ExistsByGmailID(id)
			if err != nil {
				counters.errors++
				counters.lastError = err.Error()
				continue
			}
			if exists {
				counters.skipped++
				continue
			}

			message, err := u.provider.FetchMessage(ctx, creds, id, onRefresh)
			counters.apiCalls++
			if err != nil {
				counters.errors++
				counters.lastError = err.Error()
				if errors.Is(err, errs.ErrNotFound) {
					log.WithField("message_id", id).Warn("message vanished remotely, skipping")
				} else {
					log.WithField("message_id", id).WithError(err).Error("fetch failed, skipping")
				}
				continue
			}

			inserted, err := u.emailRepo.SaveWithAttachments(message.ToEmail())
			if err != nil {
				counters.errors++
				counters.lastError = err.Error()
				consecutivePersistFailures++
				log.WithField("message_id", id).WithError(err).Error("persist failed")
				if consecutivePersistFailures >= persistFailureLimit {
					return counters, loopDone, fmt.Errorf("storage failing repeatedly: %w", err)
				}
				continue
			}
			consecutivePersistFailures = 0
			if inserted {
				counters.synced++
			} else {
				counters.skipped++
			}
		}
		counters.batches++

		if err := u.sessionRepo.UpdateProgress(session.ID, counters.progress()); err != nil {
			log.WithError(err).Warn("failed to update sync progress")
		}
		log.WithFields(logrus.Fields{
			"batch":          counters.batches,
			"emails_synced":  counters.synced,
			"emails_skipped": counters.skipped,
		}).Info("batch completed")

		// Stop and cancellation are only observed here, between pages.
		if u.registry.stopRequested(session.ID) {
			return counters, loopStopRequested, nil
		}
		if ctx.Err() != nil {
			return counters, loopDone, ctx.Err()
		}
		if nextToken == "" {
			return counters, loopDone, nil
		}
		pageToken = nextToken

		select {
		case <-time.After(u.cfg.SyncPageDelay):
		case <-ctx.Done():
			return counters, loopDone, ctx.Err()
		}
	}
}

// tokenUpdateFunc persists tokens rotated by the provider mid-call.
func (u *syncUsecase) tokenUpdateFunc(accountID string) backupdomain.TokenUpdateFunc {
	return func(token *oauth2.Token) error {
		var expiry *time.Time
		if !token.Expiry.IsZero() {
			e := token.Expiry
			expiry = &e
		}
		return u.accountRepo.UpdateTokens(accountID, token.AccessToken, token.RefreshToken, expiry)
	}
}

func (u *syncUsecase) RequestStop(accountID string) bool {
	found := u.registry.requestStop(accountID)
	if found {
		u.log.WithField("account_id", accountID).Info("stop requested for active sync")
	}
	return found
}

func (u *syncUsecase) IsActive(accountID string) bool {
	_, active := u.registry.activeSession(accountID)
	return active
}

func (u *syncUsecase) ActiveSessionID(accountID string) (string, bool) {
	return u.registry.activeSession(accountID)
}

func (u *syncUsecase) Status(accountID string) (*SyncStatus, error) {
	session, err := u.sessionRepo.ActiveForAccount(accountID)
	if err != nil {
		return nil, err
	}
	// A session that stopped reporting progress is abandoned, not active;
	// callers should not see "syncing" forever after a process death.
	if session != nil && session.IsStale(u.cfg.SessionStaleAfter, time.Now()) {
		session = nil
	}
	active := session != nil
	if session == nil {
		if session, err = u.sessionRepo.LatestForAccount(accountID); err != nil {
			return nil, err
		}
	}

	stats, err := u.emailRepo.Stats()
	if err != nil {
		return nil, err
	}

	return &SyncStatus{
		Active:  active,
		Session: session,
		Stats:   stats,
	}, nil
}

func (u *syncUsecase) History(accountID string, limit int) ([]backupdomain.SyncSession, error) {
	return u.sessionRepo.HistoryForAccount(accountID, limit)
}

func (u *syncUsecase) CleanupSessions(keep time.Duration) (int64, error) {
	return u.sessionRepo.DeleteOlderThan(time.Now().Add(-keep))
}
