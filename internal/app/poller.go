// internal/app/poller.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"homework_status_bot/internal/domain/cursor"
	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/infra/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StatusFetcher performs one request to the homework API.
type StatusFetcher interface {
	FetchStatuses(ctx context.Context, fromDate int64) homework.FetchOutcome
}

// MessageNotifier delivers one message; false means it was dropped.
type MessageNotifier interface {
	Notify(ctx context.Context, text string) bool
}

// Waiter blocks until the next cycle should start.
type Waiter interface {
	Wait(ctx context.Context) error
}

// CycleReport describes what a single poll cycle did.
type CycleReport struct {
	ID      string
	Outcome homework.OutcomeKind
	Sent    int
	Err     error
}

// Status is a point-in-time view of the poller, served by /status.
type Status struct {
	Cursor      int64
	Cycles      int
	LastCycleAt time.Time
	LastOutcome homework.OutcomeKind
	LastSent    int
	LastError   string
}

// PollerDeps groups the collaborators of a Poller.
type PollerDeps struct {
	Fetcher     StatusFetcher
	Notifier    MessageNotifier
	Store       cursor.Store
	Waiter      Waiter
	Credentials config.Credentials
	MaxCycles   int // 0 runs until the context is cancelled
}

// Poller is the driver loop: fetch, validate, notify, advance the cursor, wait.
type Poller struct {
	fetcher   StatusFetcher
	notifier  MessageNotifier
	store     cursor.Store
	waiter    Waiter
	creds     config.Credentials
	maxCycles int
	logger    *logrus.Entry

	now   func() time.Time
	newID func() string

	mu     sync.RWMutex
	status Status
}

func NewPoller(deps PollerDeps, logger *logrus.Entry) *Poller {
	return &Poller{
		fetcher:   deps.Fetcher,
		notifier:  deps.Notifier,
		store:     deps.Store,
		waiter:    deps.Waiter,
		creds:     deps.Credentials,
		maxCycles: deps.MaxCycles,
		logger:    logger,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// CheckCredentials logs and returns the first missing credential.
func CheckCredentials(creds config.Credentials, logger *logrus.Entry) error {
	if err := creds.Validate(); err != nil {
		logger.WithError(err).Error("Required credential is missing, bot will not start")
		return err
	}
	return nil
}

// Run polls until ctx is cancelled or MaxCycles cycles have run.
// It returns an error only when the startup guard fails.
func (p *Poller) Run(ctx context.Context) error {
	if err := CheckCredentials(p.creds, p.logger); err != nil {
		return fmt.Errorf("startup aborted: %w", err)
	}

	p.initCursor(ctx)
	p.logger.WithField("from_date", p.Status().Cursor).Info("Bot started, polling homework statuses")

	for cycle := 1; ; cycle++ {
		p.RunCycle(ctx)

		if p.maxCycles > 0 && cycle >= p.maxCycles {
			p.logger.WithField("cycles", cycle).Info("Cycle limit reached, stopping")
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		if err := p.waiter.Wait(ctx); err != nil {
			break
		}
	}

	p.logger.Info("Shutdown requested, polling stopped")
	return nil
}

// RunCycle performs one fetch → validate → notify pass.
// The cursor only moves when the whole pass succeeds.
func (p *Poller) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{ID: p.newID()}
	log := p.logger.WithField("cycle_id", report.ID)
	fetchedAt := p.now()

	outcome := p.fetcher.FetchStatuses(ctx, p.Status().Cursor)
	report.Outcome = outcome.Kind

	switch outcome.Kind {
	case homework.OutcomeTransient:
		report.Err = outcome.Reason
		log.WithError(outcome.Reason).Error("No data from API this cycle, will retry")
	case homework.OutcomeFatal:
		report.Err = outcome.Reason
		log.WithError(outcome.Reason).Error("Program failure")
	case homework.OutcomeSuccess:
		sent, err := p.deliver(ctx, log, outcome.Body)
		report.Sent = sent
		if err != nil {
			report.Outcome = homework.OutcomeFatal
			report.Err = err
			log.WithError(err).Error("Program failure")
			break
		}
		p.advanceCursor(ctx, log, fetchedAt.Unix())
	default:
		report.Outcome = homework.OutcomeFatal
		report.Err = fmt.Errorf("unknown fetch outcome %q", outcome.Kind)
		log.WithError(report.Err).Error("Program failure")
	}

	p.record(report, fetchedAt)
	return report
}

// deliver validates the body and sends one message per homework. Every record is formatted
// before anything is sent, so an unknown status aborts the cycle without partial delivery.
func (p *Poller) deliver(ctx context.Context, log *logrus.Entry, body json.RawMessage) (int, error) {
	homeworks, err := homework.ExtractHomeworks(body)
	if err != nil {
		return 0, fmt.Errorf("check API response: %w", err)
	}

	messages := make([]string, 0, len(homeworks))
	for _, h := range homeworks {
		msg, err := homework.FormatStatusChange(h)
		if err != nil {
			return 0, err
		}
		log.WithFields(logrus.Fields{
			"homework": h.Name,
			"status":   h.Status,
			"lesson":   h.LessonName,
			"updated":  h.DateUpdated,
		}).Info("Homework status changed")
		messages = append(messages, msg)
	}

	sent := 0
	for _, msg := range messages {
		if p.notifier.Notify(ctx, msg) {
			sent++
		}
	}
	return sent, nil
}

func (p *Poller) initCursor(ctx context.Context) {
	fromDate, err := p.store.Load(ctx)
	switch {
	case err == nil:
		p.logger.WithField("from_date", fromDate).Info("Resuming from stored cursor")
	case errors.Is(err, cursor.ErrNotFound):
		fromDate = p.now().Unix()
	default:
		p.logger.WithError(err).Error("Failed to load stored cursor, starting from now")
		fromDate = p.now().Unix()
	}
	p.setCursor(fromDate)
}

// advanceCursor moves the in-memory cursor even if persisting it fails.
func (p *Poller) advanceCursor(ctx context.Context, log *logrus.Entry, fromDate int64) {
	p.setCursor(fromDate)
	if err := p.store.Save(ctx, fromDate); err != nil {
		log.WithError(err).Error("Failed to persist cursor")
	}
}

func (p *Poller) setCursor(fromDate int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cursor = fromDate
}

func (p *Poller) record(report CycleReport, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Cycles++
	p.status.LastCycleAt = at
	p.status.LastOutcome = report.Outcome
	p.status.LastSent = report.Sent
	p.status.LastError = ""
	if report.Err != nil {
		p.status.LastError = report.Err.Error()
	}
}

// Status returns a snapshot safe to read from other goroutines.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}
