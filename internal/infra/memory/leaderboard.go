package memory

import (
	"context"
	"sort"
	"sync"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
)

// LeaderboardCache is the in-memory implementation of app.LeaderboardCache.
type LeaderboardCache struct {
	mu     sync.RWMutex
	boards map[uuid.UUID]map[uuid.UUID]domain.LeaderboardEntry
}

func NewLeaderboardCache() *LeaderboardCache {
	return &LeaderboardCache{
		boards: make(map[uuid.UUID]map[uuid.UUID]domain.LeaderboardEntry),
	}
}

func (c *LeaderboardCache) RecordScore(_ context.Context, contestID uuid.UUID, entry domain.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	board, ok := c.boards[contestID]
	if !ok {
		board = make(map[uuid.UUID]domain.LeaderboardEntry)
		c.boards[contestID] = board
	}
	board[entry.ParticipantID] = entry
	return nil
}

func (c *LeaderboardCache) Top(_ context.Context, contestID uuid.UUID, n int) ([]domain.LeaderboardEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	board, ok := c.boards[contestID]
	if !ok {
		return nil, nil
	}
	entries := make([]domain.LeaderboardEntry, 0, len(board))
	for _, entry := range board {
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CorrectCount > entries[j].CorrectCount
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (c *LeaderboardCache) Rebuild(_ context.Context, contestID uuid.UUID, entries []domain.LeaderboardEntry) error {
	board := make(map[uuid.UUID]domain.LeaderboardEntry, len(entries))
	for _, entry := range entries {
		board[entry.ParticipantID] = entry
	}
	c.mu.Lock()
	c.boards[contestID] = board
	c.mu.Unlock()
	return nil
}

func (c *LeaderboardCache) Clear(_ context.Context, contestID uuid.UUID) error {
	c.mu.Lock()
	delete(c.boards, contestID)
	c.mu.Unlock()
	return nil
}
