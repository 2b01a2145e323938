package keepalive

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	pingPeriod  = 4 * time.Minute
	pingTimeout = 10 * time.Second
)

// Run pings selfURL on a fixed period until ctx is cancelled. Free-tier
// hosts idle the process out without it.
func Run(ctx context.Context, selfURL string, logger *zap.SugaredLogger) {
	if selfURL == "" {
		return
	}

	client := &http.Client{Timeout: pingTimeout}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, selfURL, nil)
			if err != nil {
				logger.Errorw("keepalive request", zap.Error(err))
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				logger.Errorw("keepalive ping", "url", selfURL, zap.Error(err))
				continue
			}
			resp.Body.Close()
		}
	}
}
