package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CartRuleJanitorJobName is the name of the cart rule cleanup job
const CartRuleJanitorJobName = "cart_rule_janitor"

// CartRuleCleaner deletes generated cart rules that no cart uses.
// Implemented by repository.CartRuleRepository.
type CartRuleCleaner interface {
	DeleteUnattached(ctx context.Context, prefix string, before time.Time) (int64, error)
}

// CartRuleJanitor removes configurator-generated cart rules left behind when shoppers change
// their selection or abandon their cart.
type CartRuleJanitor struct {
	rules     CartRuleCleaner
	prefix    string
	retention time.Duration
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// NewCartRuleJanitor creates a janitor for rules whose code starts with prefix + "-"
func NewCartRuleJanitor(rules CartRuleCleaner, prefix string, retention, timeout time.Duration, logger *zap.Logger) *CartRuleJanitor {
	return &CartRuleJanitor{
		rules:     rules,
		prefix:    prefix,
		retention: retention,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
	}
}

// Run deletes unattached rules last updated before the retention window.
// This is called by the scheduler according to the cron expression.
func (j *CartRuleJanitor) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.RunOnce(ctx); err != nil {
		j.logger.Error("cart rule cleanup failed", zap.Error(err))
	}
}

// RunOnce performs one cleanup pass and returns the number of deleted rules
func (j *CartRuleJanitor) RunOnce(ctx context.Context) (int64, error) {
	start := time.Now()
	cutoff := j.now().UTC().Add(-j.retention)

	deleted, err := j.rules.DeleteUnattached(ctx, j.prefix+"-", cutoff)
	if err != nil {
		return 0, err
	}

	j.logger.Info("cart rule cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
		zap.Duration("duration", time.Since(start)))
	return deleted, nil
}

// RegisterCartRuleJanitor registers the janitor with the scheduler
func RegisterCartRuleJanitor(scheduler *Scheduler, job *CartRuleJanitor, cronExpr string) error {
	return scheduler.AddJob(CartRuleJanitorJobName, cronExpr, job.Run)
}
