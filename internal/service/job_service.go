package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/model"
)

// JobTTL bounds how long job state and the per-exam lock live in Redis.
const JobTTL = 24 * time.Hour

var (
	ErrJobNotFound       = errors.New("generation job not found")
	ErrJobAlreadyRunning = errors.New("a generation job for this exam is already running")
)

// jobStored mirrors GenerationJob including the fields hidden from API clients.
type jobStored struct {
	model.GenerationJob
	Location string `json:"location,omitempty"`
}

// JobService tracks background generation jobs in Redis: the queue, the job
// status and the progress channel.
type JobService struct {
	rdb redis.UniversalClient
	log zerolog.Logger
}

// NewJobService creates a new JobService.
func NewJobService(rdb redis.UniversalClient, log zerolog.Logger) *JobService {
	return &JobService{
		rdb: rdb,
		log: log.With().Str("component", "job_service").Logger(),
	}
}

// Enqueue queues a generation run for examID. Only one job per exam may be
// queued or running at a time.
func (s *JobService) Enqueue(ctx context.Context, examID int64, opts *model.OutputOptions) (*model.GenerationJob, error) {
	job := &model.GenerationJob{
		ID:       uuid.NewString(),
		ExamID:   examID,
		State:    model.JobStateQueued,
		Progress: model.Progress{Percent: 0, Message: "In Warteschlange"},
	}

	lockKey := config.CacheKey.ExamActiveJobKey(examID)
	ok, err := s.rdb.SetNX(ctx, lockKey, job.ID, JobTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("lock exam: %w", err)
	}
	if !ok {
		return nil, ErrJobAlreadyRunning
	}

	if err := s.save(ctx, job); err != nil {
		s.rdb.Del(ctx, lockKey)
		return nil, err
	}

	raw, err := json.Marshal(model.JobMessage{JobID: job.ID, ExamID: examID, Options: opts})
	if err != nil {
		s.rdb.Del(ctx, lockKey)
		return nil, err
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.GenerateJobsQueue, raw).Err(); err != nil {
		s.rdb.Del(ctx, lockKey)
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.log.Info().Str("job_id", job.ID).Int64("exam_id", examID).Msg("Generation job queued")
	return job, nil
}

// Get returns the last known state of a job.
func (s *JobService) Get(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	raw, err := s.rdb.Get(ctx, config.CacheKey.JobStatusKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	var stored jobStored
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	job := stored.GenerationJob
	job.Location = stored.Location
	return &job, nil
}

// Update stores job and publishes it on the job's progress channel.
func (s *JobService) Update(ctx context.Context, job *model.GenerationJob) error {
	if err := s.save(ctx, job); err != nil {
		return err
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, config.CacheKey.JobProgressChannel(job.ID), raw).Err()
}

// Finish records the terminal state of job and releases the exam lock. The
// lock is released even when the state cannot be stored.
func (s *JobService) Finish(ctx context.Context, job *model.GenerationJob) error {
	updateErr := s.Update(ctx, job)
	if err := s.release(ctx, job); err != nil {
		return errors.Join(updateErr, err)
	}
	return updateErr
}

// release drops the exam lock if job still owns it.
func (s *JobService) release(ctx context.Context, job *model.GenerationJob) error {
	lockKey := config.CacheKey.ExamActiveJobKey(job.ExamID)
	owner, err := s.rdb.Get(ctx, lockKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release exam %d: %w", job.ExamID, err)
	}
	if owner != job.ID {
		return nil
	}
	if err := s.rdb.Del(ctx, lockKey).Err(); err != nil {
		return fmt.Errorf("release exam %d: %w", job.ExamID, err)
	}
	return nil
}

// Subscribe opens the progress channel of a job and waits until Redis has
// confirmed the subscription. The caller closes it.
func (s *JobService) Subscribe(ctx context.Context, jobID string) (*redis.PubSub, error) {
	sub := s.rdb.Subscribe(ctx, config.CacheKey.JobProgressChannel(jobID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe job %s: %w", jobID, err)
	}
	return sub, nil
}

func (s *JobService) save(ctx context.Context, job *model.GenerationJob) error {
	raw, err := json.Marshal(jobStored{GenerationJob: *job, Location: job.Location})
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, config.CacheKey.JobStatusKey(job.ID), raw, JobTTL).Err(); err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}
