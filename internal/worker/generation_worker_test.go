package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/service"
)

type fakeResolver struct {
	exams map[int64]*model.Exam
}

func (f fakeResolver) Resolve(_ context.Context, id int64) (*model.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, service.ErrExamNotFound
	}
	cp := *e
	return &cp, nil
}

type fakeGenerator struct {
	got *model.Exam
	err error
}

func (f *fakeGenerator) Run(_ context.Context, exam *model.Exam, progress func(model.Progress)) (*service.Result, error) {
	f.got = exam
	progress(service.ProgressPreparing)
	if f.err != nil {
		return nil, f.err
	}
	progress(service.ProgressDone)
	return &service.Result{
		Filename:  exam.CompleteFilename(),
		Pages:     8,
		Reordered: true,
		Location:  "exams/1/" + exam.CompleteFilename(),
	}, nil
}

type fakeTracker struct {
	updates  []model.GenerationJob
	finished []model.GenerationJob
}

func (f *fakeTracker) Update(_ context.Context, job *model.GenerationJob) error {
	f.updates = append(f.updates, *job)
	return nil
}

func (f *fakeTracker) Finish(_ context.Context, job *model.GenerationJob) error {
	f.finished = append(f.finished, *job)
	return nil
}

func newTestWorker(gen Generator, jobs JobTracker) *GenerationWorker {
	exams := fakeResolver{exams: map[int64]*model.Exam{
		1: {ID: 1, SubjectCode: "Ma", Number: 2, Class: "8a", Date: "2025-03-24",
			Options: model.OutputOptions{ClassSetUnsolved: true}},
	}}
	return NewGenerationWorker(nil, exams, gen, jobs, zerolog.Nop())
}

func TestProcessSuccess(t *testing.T) {
	gen := &fakeGenerator{}
	jobs := &fakeTracker{}
	w := newTestWorker(gen, jobs)

	override := model.OutputOptions{SampleSolved: true}
	job := w.Process(context.Background(), model.JobMessage{JobID: "j1", ExamID: 1, Options: &override})

	if job.State != model.JobStateDone {
		t.Fatalf("state = %s (%s)", job.State, job.Error)
	}
	if gen.got.Options != override {
		t.Errorf("options override not applied: %+v", gen.got.Options)
	}
	if job.Filename != "Ma-2_8a_20250324_Komplett.pdf" || job.Pages != 8 || !job.Reordered {
		t.Errorf("job = %+v", job)
	}
	if job.Location == "" {
		t.Error("storage location not recorded")
	}

	if len(jobs.updates) != 3 {
		t.Fatalf("updates = %d, want running + 2 progress", len(jobs.updates))
	}
	if jobs.updates[0].State != model.JobStateRunning || jobs.updates[2].Progress.Percent != 100 {
		t.Errorf("updates = %+v", jobs.updates)
	}
	if len(jobs.finished) != 1 || jobs.finished[0].State != model.JobStateDone {
		t.Errorf("finished = %+v", jobs.finished)
	}
}

func TestProcessFailures(t *testing.T) {
	tests := []struct {
		name     string
		examID   int64
		genErr   error
		wantCode string
	}{
		{"unknown exam", 404, nil, "EXAM_NOT_FOUND"},
		{"no output", 1, service.ErrNoOutputSelected, "NO_OUTPUT_SELECTED"},
		{"unexpected", 1, errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeTracker{}
			w := newTestWorker(&fakeGenerator{err: tt.genErr}, jobs)

			job := w.Process(context.Background(), model.JobMessage{JobID: "j", ExamID: tt.examID})
			if job.State != model.JobStateFailed || job.ErrorCode != tt.wantCode {
				t.Errorf("job = %+v, want FAILED/%s", job, tt.wantCode)
			}
			if job.Error == "" {
				t.Error("error message missing")
			}
			if len(jobs.finished) != 1 {
				t.Errorf("Finish called %d times", len(jobs.finished))
			}
		})
	}
}
