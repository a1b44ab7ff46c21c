package emailstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SpamClassifier promotes SENT emails from filtered senders to SPAM
type SpamClassifier struct {
	repo    EmailRepository
	filters *FilterSet
	logger  *zap.Logger

	runMu sync.Mutex // Serializes classification passes

	mu           sync.Mutex // Guards the schedule below
	scheduleTick *time.Ticker
	scheduleStop chan struct{}
	scheduleDone chan struct{}
}

// NewSpamClassifier creates a classifier reading and writing through repo and
// matching senders against filters
func NewSpamClassifier(repo EmailRepository, filters *FilterSet, logger *zap.Logger) *SpamClassifier {
	if filters == nil {
		filters = NewFilterSet()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SpamClassifier{
		repo:    repo,
		filters: filters,
		logger:  logger,
	}
}

// Filters returns the filter set the classifier matches against
func (c *SpamClassifier) Filters() *FilterSet {
	return c.filters
}

// AddFilterAddress registers a sender address as spam source
func (c *SpamClassifier) AddFilterAddress(addr EmailAddress) {
	if c.filters.Add(addr) {
		c.logger.Debug("Added new filter address", zap.String("address", addr.Address))
	}
}

// RemoveFilterAddress unregisters a sender address and reports whether it was registered
func (c *SpamClassifier) RemoveFilterAddress(address string) bool {
	removed := c.filters.Remove(address)
	if removed {
		c.logger.Debug("Removed filter address", zap.String("address", address))
	}
	return removed
}

// ClassifySpamEmails marks every SENT email from a filter address as SPAM and
// returns how many emails were classified. The batch save runs even when
// nothing matched.
func (c *SpamClassifier) ClassifySpamEmails(ctx context.Context) (int, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	filters := c.filters.Snapshot()
	addresses := make([]string, len(filters))
	for i, f := range filters {
		addresses[i] = f.Address
	}

	logger := c.logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("Running spam classification", zap.Strings("filter_addresses", addresses))

	spam := []*Email{}
	for _, address := range addresses {
		emails, err := c.repo.FindAllBySenderAddress(ctx, address)
		if err != nil {
			return 0, err
		}

		// Only SENT mail is reclassified, drafts, deleted and spam stay as they are
		for _, email := range emails {
			if email.State == StateSent {
				email.State = StateSpam
				spam = append(spam, email)
			}
		}
	}

	if _, err := c.repo.SaveAll(ctx, spam); err != nil {
		return 0, err
	}

	logger.Info("Classified emails as spam", zap.Int("count", len(spam)))
	return len(spam), nil
}

// ScheduleClassification runs ClassifySpamEmails every interval until ctx is
// done or StopSchedule is called. A running schedule is replaced.
func (c *SpamClassifier) ScheduleClassification(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("classification interval must be positive")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stop existing schedule if running
	c.stopLocked()

	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	done := make(chan struct{})
	c.scheduleTick = ticker
	c.scheduleStop = stop
	c.scheduleDone = done

	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C:
				if _, err := c.ClassifySpamEmails(ctx); err != nil {
					c.logger.Error("Scheduled spam classification failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	c.logger.Info("Scheduled spam classification", zap.Duration("interval", interval))
	return nil
}

// StopSchedule stops a running schedule and waits for an in-flight pass to finish
func (c *SpamClassifier) StopSchedule() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
}

func (c *SpamClassifier) stopLocked() {
	if c.scheduleTick == nil {
		return
	}

	c.scheduleTick.Stop()
	close(c.scheduleStop)
	<-c.scheduleDone

	c.scheduleTick = nil
	c.scheduleStop = nil
	c.scheduleDone = nil
}
