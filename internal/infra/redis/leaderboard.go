package redis

import (
	"context"
	"sort"
	"strconv"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Leaderboard keeps the live standings in Redis:
//
//	ZADD contest:{id}:leaderboard {totalScore} {participantID}
//	HSET contest:{id}:leaderboard:names   {participantID} {nickname}
//	HSET contest:{id}:leaderboard:correct {participantID} {correctCount}
//
// Scores written here are the participant's new cumulative total, never a
// delta, so a replayed update is harmless.
type Leaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboard(client *redis.Client, ttl time.Duration) *Leaderboard {
	return &Leaderboard{client: client, ttl: ttl}
}

func (l *Leaderboard) RecordScore(ctx context.Context, contestID uuid.UUID, entry domain.LeaderboardEntry) error {
	boardKey := l.boardKey(contestID)
	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, boardKey, redis.Z{Score: float64(entry.Score), Member: entry.ParticipantID.String()})
	pipe.HSet(ctx, l.namesKey(contestID), entry.ParticipantID.String(), entry.Nickname)
	pipe.HSet(ctx, l.correctKey(contestID), entry.ParticipantID.String(), entry.CorrectCount)
	if l.ttl > 0 {
		pipe.Expire(ctx, boardKey, l.ttl)
		pipe.Expire(ctx, l.namesKey(contestID), l.ttl)
		pipe.Expire(ctx, l.correctKey(contestID), l.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (l *Leaderboard) Top(ctx context.Context, contestID uuid.UUID, n int) ([]domain.LeaderboardEntry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}
	members, err := l.client.ZRevRangeWithScores(ctx, l.boardKey(contestID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	names, _ := l.client.HGetAll(ctx, l.namesKey(contestID)).Result()
	corrects, _ := l.client.HGetAll(ctx, l.correctKey(contestID)).Result()

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, member := range members {
		idStr, ok := member.Member.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		correct, _ := strconv.Atoi(corrects[idStr])
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: id,
			Nickname:      names[idStr],
			Score:         int(member.Score),
			CorrectCount:  correct,
		})
	}
	// The sorted set orders by score alone; break ties on correct count
	// before assigning ranks.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CorrectCount > entries[j].CorrectCount
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (l *Leaderboard) Rebuild(ctx context.Context, contestID uuid.UUID, entries []domain.LeaderboardEntry) error {
	if err := l.Clear(ctx, contestID); err != nil {
		return err
	}
	pipe := l.client.Pipeline()
	for _, entry := range entries {
		pipe.ZAdd(ctx, l.boardKey(contestID), redis.Z{Score: float64(entry.Score), Member: entry.ParticipantID.String()})
		pipe.HSet(ctx, l.namesKey(contestID), entry.ParticipantID.String(), entry.Nickname)
		pipe.HSet(ctx, l.correctKey(contestID), entry.ParticipantID.String(), entry.CorrectCount)
	}
	if l.ttl > 0 {
		pipe.Expire(ctx, l.boardKey(contestID), l.ttl)
		pipe.Expire(ctx, l.namesKey(contestID), l.ttl)
		pipe.Expire(ctx, l.correctKey(contestID), l.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (l *Leaderboard) Clear(ctx context.Context, contestID uuid.UUID) error {
	return l.client.Del(ctx, l.boardKey(contestID), l.namesKey(contestID), l.correctKey(contestID)).Err()
}

func (l *Leaderboard) boardKey(contestID uuid.UUID) string {
	return "contest:" + contestID.String() + ":leaderboard"
}

func (l *Leaderboard) namesKey(contestID uuid.UUID) string {
	return l.boardKey(contestID) + ":names"
}

func (l *Leaderboard) correctKey(contestID uuid.UUID) string {
	return l.boardKey(contestID) + ":correct"
}
