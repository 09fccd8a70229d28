package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/ingrid-backend/internal/clock"
	"github.com/heartmarshall/ingrid-backend/internal/domain"
)

type dueStore interface {
	ListDue(ctx context.Context, before time.Time, after *domain.DueCursor, limit int) ([]domain.DueReminder, error)
	ClaimPending(ctx context.Context, id uuid.UUID) (bool, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type notifier interface {
	Deliver(ctx context.Context, userID, message string) error
}

type errorReporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	CaptureMessage(ctx context.Context, msg string, tags map[string]string)
}

// SchedulerConfig holds the tick parameters.
type SchedulerConfig struct {
	Window          time.Duration
	DeliveryTimeout time.Duration
	Concurrency     int
	BatchSize       int
}

// Scheduler delivers due reminders. Each reminder is claimed, delivered and
// marked inside its own transaction, so overlapping ticks never deliver the
// same subscription twice.
type Scheduler struct {
	store    dueStore
	tx       txManager
	sink     notifier
	reporter errorReporter
	clock    clock.Clock
	cfg      SchedulerConfig
	log      *slog.Logger
}

// NewScheduler creates a new reminder scheduler.
func NewScheduler(
	log *slog.Logger,
	store dueStore,
	tx txManager,
	sink notifier,
	reporter errorReporter,
	clk clock.Clock,
	cfg SchedulerConfig,
) *Scheduler {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 500
	}
	return &Scheduler{
		store:    store,
		tx:       tx,
		sink:     sink,
		reporter: reporter,
		clock:    clk,
		cfg:      cfg,
		log:      log.With("service", "scheduler"),
	}
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeFailed
	outcomeSkipped
)

var errDelivery = errors.New("delivery failed")

// Tick delivers every subscription whose item releases before now+window.
// Due reminders are read in pages of BatchSize, each page starting after the
// last row of the previous one, so reminders that keep failing never hide
// the ones behind them. Per-reminder failures are counted in the report;
// only a failure to list due reminders is returned.
func (s *Scheduler) Tick(ctx context.Context) (domain.TickReport, error) {
	var (
		report  domain.TickReport
		mu      sync.Mutex
		cursor  *domain.DueCursor
		listErr error
	)

	now := s.clock.Now()
	before := now.Add(s.cfg.Window)

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Concurrency)

	for ctx.Err() == nil {
		page, err := s.store.ListDue(ctx, before, cursor, s.cfg.BatchSize)
		if err != nil {
			listErr = fmt.Errorf("reminder.Tick: list due: %w", err)
			break
		}

		mu.Lock()
		report.Due += len(page)
		mu.Unlock()

		for _, d := range page {
			if d.Item == nil {
				mu.Lock()
				report.Orphaned++
				mu.Unlock()
				s.log.WarnContext(ctx, "subscribed item missing",
					slog.String("subscription_id", d.Subscription.ID.String()),
					slog.String("item_id", d.Subscription.ItemID),
					slog.String("error", domain.ErrNotFound.Error()),
				)
				continue
			}
			if ctx.Err() != nil {
				break
			}

			g.Go(func() error {
				res := s.process(ctx, d, now)
				mu.Lock()
				defer mu.Unlock()
				switch res {
				case outcomeDelivered:
					report.Delivered++
				case outcomeFailed:
					report.Failed++
				case outcomeSkipped:
					report.Skipped++
				}
				return nil
			})
		}

		if len(page) < s.cfg.BatchSize {
			break
		}
		next := page[len(page)-1].Cursor()
		cursor = &next
	}
	_ = g.Wait()

	if listErr != nil {
		s.log.ErrorContext(ctx, "reminder tick aborted",
			slog.Int("due", report.Due),
			slog.String("error", listErr.Error()),
		)
		return report, listErr
	}

	s.log.InfoContext(ctx, "reminder tick finished",
		slog.Int("due", report.Due),
		slog.Int("delivered", report.Delivered),
		slog.Int("failed", report.Failed),
		slog.Int("skipped", report.Skipped),
		slog.Int("orphaned", report.Orphaned),
	)
	if report.Failed > 0 {
		s.reporter.CaptureMessage(ctx,
			fmt.Sprintf("reminder tick: %d of %d deliveries failed", report.Failed, report.Due),
			map[string]string{"component": "scheduler"},
		)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// RunTick adapts Tick to a worker function.
func (s *Scheduler) RunTick(ctx context.Context) error {
	_, err := s.Tick(ctx)
	return err
}

func (s *Scheduler) process(ctx context.Context, d domain.DueReminder, now time.Time) outcome {
	sub := d.Subscription
	res := outcomeFailed

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		claimed, err := s.store.ClaimPending(txCtx, sub.ID)
		if err != nil {
			return fmt.Errorf("claim: %w", err)
		}
		if !claimed {
			res = outcomeSkipped
			return nil
		}

		deliverCtx, cancel := context.WithTimeout(txCtx, s.cfg.DeliveryTimeout)
		defer cancel()
		if err := s.sink.Deliver(deliverCtx, sub.UserID, domain.ReminderMessage(*d.Item, now)); err != nil {
			return fmt.Errorf("%w: %w", errDelivery, err)
		}

		if err := s.store.MarkNotified(txCtx, sub.ID, s.clock.Now()); err != nil {
			return fmt.Errorf("mark notified: %w", err)
		}
		res = outcomeDelivered
		return nil
	})

	attrs := []any{
		slog.String("subscription_id", sub.ID.String()),
		slog.String("user_id", sub.UserID),
		slog.String("item_id", sub.ItemID),
	}
	switch {
	case err == nil && res == outcomeSkipped:
		s.log.DebugContext(ctx, "reminder already handled", attrs...)
	case err == nil:
		s.log.InfoContext(ctx, "reminder delivered", attrs...)
	case errors.Is(err, domain.ErrStateViolation):
		res = outcomeSkipped
		s.log.WarnContext(ctx, "reminder notified concurrently", append(attrs, slog.String("error", err.Error()))...)
	default:
		res = outcomeFailed
		s.log.ErrorContext(ctx, "reminder not delivered", append(attrs, slog.String("error", err.Error()))...)
		s.reporter.CaptureError(ctx, err, map[string]string{
			"component":       "scheduler",
			"subscription_id": sub.ID.String(),
			"item_id":         sub.ItemID,
			"transient":       strconv.FormatBool(domain.IsTransient(err)),
		})
	}
	return res
}
