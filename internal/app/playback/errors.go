package playback

import "github.com/cockroachdb/errors"

// Errors
var (
	ErrNotReady           = errors.New("playback not ready")
	ErrPlaybackRejected   = errors.New("playback rejected")
	ErrVerseNotFound      = errors.New("verse not found")
	ErrCacheRefreshFailed = errors.New("verse url cache refresh failed")
	ErrStaleResult        = errors.New("stale result")
)
