package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/service"
)

const GeneratePollTimeout = 1 * time.Second

// ExamResolver loads an exam with questions and roster. Implemented by service.ExamService.
type ExamResolver interface {
	Resolve(ctx context.Context, id int64) (*model.Exam, error)
}

// Generator runs the document pipeline. Implemented by service.GenerationService.
type Generator interface {
	Run(ctx context.Context, exam *model.Exam, progress func(model.Progress)) (*service.Result, error)
}

// JobTracker records job state. Implemented by service.JobService.
type JobTracker interface {
	Update(ctx context.Context, job *model.GenerationJob) error
	Finish(ctx context.Context, job *model.GenerationJob) error
}

// GenerationWorker consumes the generation queue one job at a time.
type GenerationWorker struct {
	rdb   *redis.Client
	exams ExamResolver
	gen   Generator
	jobs  JobTracker
	log   zerolog.Logger
}

func NewGenerationWorker(rdb *redis.Client, exams ExamResolver, gen Generator, jobs JobTracker, log zerolog.Logger) *GenerationWorker {
	return &GenerationWorker{
		rdb:   rdb,
		exams: exams,
		gen:   gen,
		jobs:  jobs,
		log:   log.With().Str("component", "generation_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

// Start blocks until ctx is cancelled. A job already taken from the queue
// runs to completion.
func (w *GenerationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("GenerationWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("GenerationWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, GeneratePollTimeout, config.WorkerKey.GenerateJobsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var msg model.JobMessage
			if err := json.Unmarshal([]byte(item[1]), &msg); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			w.Process(context.WithoutCancel(ctx), msg)
		}
	}
}

// ----------------------------------------------------------------
// Single job
// ----------------------------------------------------------------

// Process runs one queued job and returns its terminal state.
func (w *GenerationWorker) Process(ctx context.Context, msg model.JobMessage) *model.GenerationJob {
	log := w.log.With().Str("job_id", msg.JobID).Int64("exam_id", msg.ExamID).Logger()
	job := &model.GenerationJob{
		ID:     msg.JobID,
		ExamID: msg.ExamID,
		State:  model.JobStateRunning,
	}
	w.update(ctx, job, log)

	exam, err := w.exams.Resolve(ctx, msg.ExamID)
	if err != nil {
		return w.fail(ctx, job, err, log)
	}
	if msg.Options != nil {
		exam.Options = *msg.Options
	}

	result, err := w.gen.Run(ctx, exam, func(p model.Progress) {
		job.Progress = p
		w.update(ctx, job, log)
	})
	if err != nil {
		return w.fail(ctx, job, err, log)
	}

	job.State = model.JobStateDone
	job.Filename = result.Filename
	job.Pages = result.Pages
	job.Reordered = result.Reordered
	job.Location = result.Location
	if err := w.jobs.Finish(ctx, job); err != nil {
		log.Error().Err(err).Msg("Failed to record finished job")
	}
	log.Info().Int("pages", job.Pages).Msg("Generation job finished")
	return job
}

func (w *GenerationWorker) fail(ctx context.Context, job *model.GenerationJob, err error, log zerolog.Logger) *model.GenerationJob {
	job.State = model.JobStateFailed
	job.Error = err.Error()
	job.ErrorCode = string(service.ErrorCode(err))
	log.Error().Err(err).Str("code", job.ErrorCode).Msg("Generation job failed")

	if ferr := w.jobs.Finish(ctx, job); ferr != nil {
		log.Error().Err(ferr).Msg("Failed to record failed job")
	}
	return job
}

func (w *GenerationWorker) update(ctx context.Context, job *model.GenerationJob, log zerolog.Logger) {
	if err := w.jobs.Update(ctx, job); err != nil {
		log.Warn().Err(err).Int("percent", job.Progress.Percent).Msg("Failed to publish progress")
	}
}
