package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"matha-service/internal/domain"
	"matha-service/internal/logger"
)

const (
	DefaultLeaderboardSize = 10
	MaxLeaderboardSize     = 100
)

// LeaderboardRanker orders users by aggregate points.
type LeaderboardRanker struct {
	store DocumentStore
	log   *logger.Logger
	now   func() time.Time
}

func NewLeaderboardRanker(store DocumentStore, log *logger.Logger) *LeaderboardRanker {
	return &LeaderboardRanker{store: store, log: log, now: time.Now}
}

// TopN returns the n highest ranked users. Ranks are positional and 1-based:
// equal points still get distinct consecutive ranks, in store order.
// A read error yields the local fallback board flagged as such.
func (l *LeaderboardRanker) TopN(ctx context.Context, n int) domain.Leaderboard {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	if n > MaxLeaderboardSize {
		n = MaxLeaderboardSize
	}

	users, err := l.rankedUsers(ctx, n)
	if err != nil {
		l.log.Warn("using fallback leaderboard", "error", err)
		entries := fallbackLeaderboard()
		if len(entries) > n {
			entries = entries[:n]
		}
		return domain.Leaderboard{Entries: entries, Fallback: true, GeneratedAt: l.now()}
	}

	entries := make([]domain.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = entryFor(i+1, u)
	}
	return domain.Leaderboard{Entries: entries, GeneratedAt: l.now()}
}

// RankOf ranks one user against the full user set using the TopN rule.
func (l *LeaderboardRanker) RankOf(ctx context.Context, userID string) (domain.LeaderboardEntry, error) {
	if userID == "" {
		return domain.LeaderboardEntry{}, fmt.Errorf("%w: userId is required", domain.ErrValidation)
	}
	users, err := l.rankedUsers(ctx, 0)
	if err != nil {
		return domain.LeaderboardEntry{}, fmt.Errorf("rank user: %w", err)
	}
	for i, u := range users {
		if u.ID == userID {
			return entryFor(i+1, u), nil
		}
	}
	return domain.LeaderboardEntry{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
}

func (l *LeaderboardRanker) rankedUsers(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	err := l.store.Find(ctx, domain.CollectionUsers, Query{
		OrderBy:    "points",
		Descending: true,
		Limit:      limit,
	}, &users)
	if err != nil {
		return nil, err
	}
	// Stores already order by points; the stable sort pins the contract
	// regardless of backend.
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Points > users[j].Points
	})
	return users, nil
}

func entryFor(rank int, u domain.User) domain.LeaderboardEntry {
	name := u.DisplayName
	if name == "" {
		name = "User"
	}
	return domain.LeaderboardEntry{
		Rank:         rank,
		UserID:       u.ID,
		DisplayName:  name,
		Avatar:       domain.Avatar(name),
		Points:       u.Points,
		QuizzesTaken: u.QuizzesTaken,
		Streak:       u.Streak,
	}
}
