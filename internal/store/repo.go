package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/robalobadob/wordle/apps/activity-server/internal/achievements"
	"github.com/robalobadob/wordle/apps/activity-server/internal/game"
	"github.com/robalobadob/wordle/apps/activity-server/internal/leaderboard"
)

// SessionTTL bounds how long an abandoned session record is kept.
const SessionTTL = 24 * time.Hour

// Key layout shared with already-deployed data.
func SessionKey(instanceID, userID string) string { return "game:" + instanceID + ":" + userID }
func LeaderboardKey(instanceID string) string { return "session:" + instanceID }
func AchievementsKey(userID string) string { return "achievements:" + userID }

// Repo reads and writes typed records as JSON over a KV.
type Repo struct {
	kv KV
}

// NewRepo wraps kv.
func NewRepo(kv KV) *Repo { return &Repo{kv: kv} }

func getJSON[T any](ctx context.Context, kv KV, key string, out *T) error {
	b, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func putJSON(ctx context.Context, kv KV, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Put(ctx, key, b, ttl)
}

// LoadSession returns the stored session or ErrNotFound.
func (r *Repo) LoadSession(ctx context.Context, instanceID, userID string) (*game.State, error) {
	var st game.State
	if err := getJSON(ctx, r.kv, SessionKey(instanceID, userID), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveSession writes st with SessionTTL.
func (r *Repo) SaveSession(ctx context.Context, st *game.State) error {
	return putJSON(ctx, r.kv, SessionKey(st.InstanceID, st.UserID), st, SessionTTL)
}

// LoadLeaderboard returns the instance's entries; a missing board is empty.
func (r *Repo) LoadLeaderboard(ctx context.Context, instanceID string) ([]leaderboard.Entry, error) {
	entries := []leaderboard.Entry{}
	err := getJSON(ctx, r.kv, LeaderboardKey(instanceID), &entries)
	if errors.Is(err, ErrNotFound) {
		return []leaderboard.Entry{}, nil
	}
	return entries, err
}

// SaveLeaderboard writes the full entry list. Leaderboards do not expire.
func (r *Repo) SaveLeaderboard(ctx context.Context, instanceID string, entries []leaderboard.Entry) error {
	return putJSON(ctx, r.kv, LeaderboardKey(instanceID), entries, 0)
}

// LoadAchievements returns the user's record, or nil if none exists yet.
func (r *Repo) LoadAchievements(ctx context.Context, userID string) (*achievements.Record, error) {
	var rec achievements.Record
	err := getJSON(ctx, r.kv, AchievementsKey(userID), &rec)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveAchievements writes rec durably.
func (r *Repo) SaveAchievements(ctx context.Context, rec achievements.Record) error {
	return putJSON(ctx, r.kv, AchievementsKey(rec.UserID), rec, 0)
}
