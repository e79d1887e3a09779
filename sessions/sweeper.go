package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunExpirySweep deletes expired sessions every interval until ctx is done
func RunExpirySweep(ctx context.Context, repo Repo, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.DeleteExpiredSessions(NowTimeFunc())
			if err != nil {
				logger.Err(err).Msg("Failed to delete expired sessions")
				continue
			}
			if removed > 0 {
				logger.Debug().Int("removed", removed).Msg("Expired sessions deleted")
			}
		}
	}
}
