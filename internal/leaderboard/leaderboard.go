// internal/leaderboard/leaderboard.go
//
// Per-instance leaderboard ranking.
//
// A leaderboard is a list of entries, one per user, ordered by score ascending
// (attempts + hints, lower is better) and then by elapsed time. Submit is a pure
// merge: the store package reads the list, calls Submit and writes the result back.
// Re-applying the same submission is a no-op, so duplicate retries are harmless as
// long as each write is atomic.

package leaderboard

import (
	"slices"
	"sort"

	"github.com/samber/lo"
)

const (
	// DefaultLimit is how many entries a leaderboard keeps.
	DefaultLimit = 100
	// MinLimit is the smallest accepted limit.
	MinLimit = 50
	// unknownAttempts scores an entry with no recorded attempt count.
	unknownAttempts = 6
)

// Entry is one user's best result in an instance.
type Entry struct {
	UserID    string `json:"userId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Guesses   int    `json:"guesses"`
	TimeMs    int64  `json:"timeMs" validate:"gte=0"`
	HintsUsed int    `json:"hintsUsed" validate:"gte=0"`
	Timestamp int64  `json:"timestamp"`
}

// Score returns attempts plus hints. Missing attempt counts score as 6.
func Score(e Entry) int {
	g := e.Guesses
	if g <= 0 {
		g = unknownAttempts
	}
	return g + e.HintsUsed
}

// Better reports whether a ranks strictly ahead of b.
func Better(a, b Entry) bool {
	sa, sb := Score(a), Score(b)
	if sa != sb {
		return sa < sb
	}
	return a.TimeMs < b.TimeMs
}

// Submit merges e into entries and returns the re-sorted, truncated list.
// An existing entry for the same user is replaced only by a strictly better one.
// entries is not modified.
func Submit(entries []Entry, e Entry, limit int) []Entry {
	out := slices.Clone(entries)

	if _, i, ok := lo.FindIndexOf(out, func(x Entry) bool { return x.UserID == e.UserID }); ok {
		if Better(e, out[i]) {
			out[i] = e
		}
	} else {
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool { return Better(out[i], out[j]) })

	limit = normalizeLimit(limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rank returns the 1-based position of userID, or 0 if absent.
func Rank(entries []Entry, userID string) int {
	_, i, ok := lo.FindIndexOf(entries, func(x Entry) bool { return x.UserID == userID })
	if !ok {
		return 0
	}
	return i + 1
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	return limit
}
