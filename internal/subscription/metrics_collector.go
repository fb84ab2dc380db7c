package subscription

import (
	"context"
	"time"

	"easyminutes/internal/logger"
	"easyminutes/internal/metrics"
	"easyminutes/internal/plan"
)

// StartMetricsCollector refreshes the active-subscriptions gauge until ctx is
// cancelled. Plans with no subscribers are reported as zero so a plan that
// empties out does not keep its last value.
func StartMetricsCollector(ctx context.Context, repo Repository, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	collect := func() {
		counts, err := repo.CountActiveByPlan(ctx)
		if err != nil {
			logger.Errorf("subscription metrics: count failed: %v", err)
			return
		}
		for _, t := range plan.Types() {
			metrics.SetActiveSubscriptions(string(t), counts[string(t)])
		}
	}

	collect()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			collect()
		}
	}
}
