package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"
)

const (
	ContentKeyPrefix   = "content:%d"
	ListKeyPrefix      = "list:%s:%d:%s"
	TagCountsKeyPrefix = "tagcounts:%s:%d:%d"
	GenerationPrefix   = "gen:%s"
)

const (
	ContentTTL   = 30 * time.Minute
	ListTTL      = 2 * time.Minute
	TagCountsTTL = 5 * time.Minute
)

func ContentKey(contentID uint) string {
	return fmt.Sprintf(ContentKeyPrefix, contentID)
}

// ListKey keys a listing result by project, the project's current
// generation and a fingerprint of the query parameters. Bumping the
// generation orphans every cached page at once.
func ListKey(project string, generation int64, fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return fmt.Sprintf(ListKeyPrefix, project, generation, fmt.Sprintf("%x", sum[:8]))
}

func TagCountsKey(project string, limit, offset int) string {
	return fmt.Sprintf(TagCountsKeyPrefix, project, limit, offset)
}

// ListGeneration returns the project's current listing generation, 0 when
// the counter does not exist or the cache is unavailable.
func ListGeneration(ctx context.Context, project string) int64 {
	if client == nil {
		return 0
	}
	gen, err := client.Get(ctx, fmt.Sprintf(GenerationPrefix, project)).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// BumpGeneration invalidates every cached listing page for a project. Tag
// count pages are left to their short TTL.
func BumpGeneration(ctx context.Context, project string) {
	if client != nil {
		client.Incr(ctx, fmt.Sprintf(GenerationPrefix, project))
	}
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateContent(ctx context.Context, contentID uint) {
	Invalidate(ctx, ContentKey(contentID))
}
