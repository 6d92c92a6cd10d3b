package precompute

import (
	"context"
	"log/slog"
	"time"
)

// userStatsUpsert rebuilds the per-project user counters in one statement.
// Users with no activity in the project are skipped. Portable across
// postgres and sqlite.
const userStatsUpsert = `
INSERT INTO user_stats (user_id, project, submission_count, likes_given, likes_received)
SELECT users.id,
       ?,
       COALESCE(submitted.cnt, 0),
       COALESCE(given.cnt, 0),
       COALESCE(submitted.likes, 0)
FROM users
         LEFT JOIN (SELECT content.user_id,
                           COUNT(*)                       AS cnt,
                           SUM(COALESCE(content_stats.likes, 0)) AS likes
                    FROM content
                             LEFT JOIN content_stats ON content_stats.content_id = content.id
                    WHERE content.project = ?
                    GROUP BY content.user_id) submitted ON submitted.user_id = users.id
         LEFT JOIN (SELECT likes.user_id, COUNT(*) AS cnt
                    FROM likes
                             INNER JOIN content ON content.id = likes.content_id
                    WHERE content.project = ?
                    GROUP BY likes.user_id) given ON given.user_id = users.id
WHERE COALESCE(submitted.cnt, 0) > 0
   OR COALESCE(given.cnt, 0) > 0
ON CONFLICT (user_id, project) DO UPDATE SET submission_count = excluded.submission_count,
                                             likes_given      = excluded.likes_given,
                                             likes_received   = excluded.likes_received
`

// RefreshUserStats rebuilds the user_stats rows for a project, at most once
// per TTL window. Callers on the read path use this; it trades staleness for
// not recomputing a project-wide aggregate on every listing.
func (e *Engine) RefreshUserStats(ctx context.Context, project string) error {
	e.mu.Lock()
	last, ok := e.userRefresh[project]
	if ok && time.Since(last) < userStatsTTL {
		e.mu.Unlock()
		return nil
	}
	e.userRefresh[project] = time.Now()
	e.mu.Unlock()

	if err := e.ForceRefreshUserStats(ctx, project); err != nil {
		// Allow the next caller to retry instead of waiting out the TTL.
		e.mu.Lock()
		delete(e.userRefresh, project)
		e.mu.Unlock()
		return err
	}
	return nil
}

// ForceRefreshUserStats rebuilds the user_stats rows for a project
// unconditionally.
func (e *Engine) ForceRefreshUserStats(ctx context.Context, project string) error {
	err := e.db.WithContext(ctx).Exec(userStatsUpsert, project, project, project).Error
	if err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "user stats refreshed", slog.String("project", project))
	return nil
}
