package redis

import (
	"context"
	"strconv"
	"time"

	"arena-contest-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TimerStore keeps timer snapshots in a Redis hash per contest:
// HSET contest:{id}:timer {field} {value}. It is a projection of the
// durable contest record; a flushed cache is rebuilt on restore.
type TimerStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTimerStore(client *redis.Client, ttl time.Duration) *TimerStore {
	return &TimerStore{client: client, ttl: ttl}
}

func (s *TimerStore) SaveTimerState(ctx context.Context, contestID uuid.UUID, state domain.TimerState) error {
	key := s.key(contestID)
	fields := map[string]interface{}{
		"questionIndex": state.QuestionIndex,
		"durationMs":    state.DurationMs,
		"remainingMs":   state.RemainingMs,
		"running":       strconv.FormatBool(state.Running),
		"startedAt":     state.StartedAt.UnixMilli(),
		"pausedAt":      state.PausedAt.UnixMilli(),
	}
	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *TimerStore) LoadTimerState(ctx context.Context, contestID uuid.UUID) (domain.TimerState, bool, error) {
	fields, err := s.client.HGetAll(ctx, s.key(contestID)).Result()
	if err != nil {
		return domain.TimerState{}, false, err
	}
	if len(fields) == 0 {
		return domain.TimerState{}, false, nil
	}

	state := domain.TimerState{}
	state.QuestionIndex, _ = strconv.Atoi(fields["questionIndex"])
	state.DurationMs, _ = strconv.ParseInt(fields["durationMs"], 10, 64)
	state.RemainingMs, _ = strconv.ParseInt(fields["remainingMs"], 10, 64)
	state.Running, _ = strconv.ParseBool(fields["running"])
	if ms, err := strconv.ParseInt(fields["startedAt"], 10, 64); err == nil && ms > 0 {
		state.StartedAt = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(fields["pausedAt"], 10, 64); err == nil && ms > 0 {
		state.PausedAt = time.UnixMilli(ms)
	}
	return state, true, nil
}

func (s *TimerStore) ClearTimerState(ctx context.Context, contestID uuid.UUID) error {
	return s.client.Del(ctx, s.key(contestID)).Err()
}

func (s *TimerStore) key(contestID uuid.UUID) string {
	return "contest:" + contestID.String() + ":timer"
}
