package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stemsi/klausurgen/internal/allocator"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/repository"
)

type fakeExamStore struct {
	mu    sync.Mutex
	next  int64
	exams map[int64]model.ExamRecord
}

func newFakeExamStore() *fakeExamStore {
	return &fakeExamStore{exams: map[int64]model.ExamRecord{}}
}

func (f *fakeExamStore) Create(_ context.Context, e *model.ExamRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	e.ID = f.next
	f.exams[e.ID] = *e
	return nil
}

func (f *fakeExamStore) Update(_ context.Context, e *model.ExamRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exams[e.ID]; !ok {
		return repository.ErrNotFound
	}
	f.exams[e.ID] = *e
	return nil
}

func (f *fakeExamStore) GetByID(_ context.Context, id int64) (*model.ExamRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (f *fakeExamStore) ListRecent(_ context.Context, limit, offset int) ([]model.ExamRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]model.ExamRecord, 0, len(f.exams))
	for _, e := range f.exams {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return nil, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

type fakeQuestionStore map[int64]model.Question

func (f fakeQuestionStore) List(_ context.Context, filter model.QuestionFilter) ([]model.Question, error) {
	var out []model.Question
	for _, q := range f {
		if filter.Subject == "" || q.Subject == filter.Subject {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f fakeQuestionStore) GetByIDs(_ context.Context, ids []int64) (map[int64]model.Question, error) {
	out := map[int64]model.Question{}
	for _, id := range ids {
		if q, ok := f[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

type fakeStudentStore []model.Student

func (f fakeStudentStore) ListByClass(_ context.Context, q model.RosterQuery) ([]model.Student, error) {
	out := []model.Student{}
	for _, s := range f {
		if s.SchoolYear == q.SchoolYear && s.School == q.School && s.Class == q.Class {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeStudentStore) ListClasses(_ context.Context, schoolYear, school string) ([]string, error) {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range f {
		if s.SchoolYear == schoolYear && s.School == school && !seen[s.Class] {
			seen[s.Class] = true
			out = append(out, s.Class)
		}
	}
	sort.Strings(out)
	return out, nil
}

type fakeSchoolStore map[string]*model.School

func (f fakeSchoolStore) GetByCode(_ context.Context, code string) (*model.School, error) {
	s, ok := f[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

type fakeGraphicStore []model.Graphic

func (f fakeGraphicStore) ListForQuestions(_ context.Context, ids []int64) ([]model.Graphic, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	out := []model.Graphic{}
	for _, g := range f {
		if want[g.QuestionID] {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeCompiler struct {
	mu          sync.Mutex
	calls       int
	markup      string
	attachments []model.Attachment
	pdf         []byte
	err         error
}

func (f *fakeCompiler) Compile(_ context.Context, markup string, attachments []model.Attachment) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.markup = markup
	f.attachments = attachments
	if f.err != nil {
		return nil, f.err
	}
	return f.pdf, nil
}

type failingAllocator struct{}

func (failingAllocator) Next(context.Context) (int64, error) {
	return 0, fmt.Errorf("%w: %v", allocator.ErrStorageUnavailable, errors.New("disk full"))
}
