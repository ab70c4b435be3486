package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/model"
)

var errConnReset = errors.New("connection reset by peer")

// memRedis implements the few commands JobService.Finish issues. Calling any
// other command panics through the nil embedded client.
type memRedis struct {
	redis.UniversalClient
	values  map[string]string
	failSet bool
}

func (m *memRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.failSet {
		cmd.SetErr(errConnReset)
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *memRedis) Publish(ctx context.Context, _ string, _ interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(0)
	return cmd
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestJobFinishReleasesExamLock(t *testing.T) {
	lockKey := config.CacheKey.ExamActiveJobKey(7)
	tests := []struct {
		name     string
		owner    string
		failSet  bool
		wantErr  bool
		wantLock bool
	}{
		{"stored", "job-1", false, false, false},
		{"store fails", "job-1", true, true, false},
		{"lock owned by newer job", "job-2", false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb := &memRedis{values: map[string]string{lockKey: tt.owner}, failSet: tt.failSet}
			svc := NewJobService(rdb, zerolog.Nop())

			job := &model.GenerationJob{ID: "job-1", ExamID: 7, State: model.JobStateDone}
			err := svc.Finish(context.Background(), job)

			if tt.wantErr {
				if !errors.Is(err, errConnReset) {
					t.Errorf("err = %v, want the store error", err)
				}
			} else if err != nil {
				t.Fatalf("Finish: %v", err)
			}
			if _, held := rdb.values[lockKey]; held != tt.wantLock {
				t.Errorf("lock held = %v, want %v", held, tt.wantLock)
			}
		})
	}
}
