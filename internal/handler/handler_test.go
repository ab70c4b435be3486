package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/compiler"
	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/repository"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup()
}

type memExams struct {
	exams map[int64]model.ExamRecord
}

func (m *memExams) Create(_ context.Context, e *model.ExamRecord) error {
	e.ID = int64(len(m.exams) + 1)
	m.exams[e.ID] = *e
	return nil
}

func (m *memExams) Update(_ context.Context, e *model.ExamRecord) error {
	if _, ok := m.exams[e.ID]; !ok {
		return repository.ErrNotFound
	}
	m.exams[e.ID] = *e
	return nil
}

func (m *memExams) GetByID(_ context.Context, id int64) (*model.ExamRecord, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memExams) ListRecent(context.Context, int, int) ([]model.ExamRecord, int, error) {
	out := []model.ExamRecord{}
	for _, e := range m.exams {
		out = append(out, e)
	}
	return out, len(out), nil
}

type memPool struct{}

func (memPool) List(context.Context, model.QuestionFilter) ([]model.Question, error) {
	return []model.Question{{ID: 11, Title: "Volumen", Points: 5}}, nil
}

func (memPool) GetByIDs(_ context.Context, ids []int64) (map[int64]model.Question, error) {
	out := map[int64]model.Question{}
	for _, id := range ids {
		if id == 11 || id == 12 {
			out[id] = model.Question{ID: id, Points: int(id) - 6}
		}
	}
	return out, nil
}

func (memPool) ListByClass(context.Context, model.RosterQuery) ([]model.Student, error) {
	return []model.Student{{StudentID: 501, GivenName: "Ada", FamilyName: "Lovelace"}}, nil
}

func (memPool) ListClasses(context.Context, string, string) ([]string, error) {
	return []string{"8a", "8b"}, nil
}

type noSchools struct{}

func (noSchools) GetByCode(context.Context, string) (*model.School, error) {
	return nil, repository.ErrNotFound
}

func testRouter() *gin.Engine {
	exams := service.NewExamService(&memExams{exams: map[int64]model.ExamRecord{}}, memPool{}, memPool{}, noSchools{}, zerolog.Nop())
	eh := NewExamHandler(exams)
	ph := NewPoolHandler(service.NewPoolService(memPool{}, memPool{}))
	jh := NewJobHandler(exams, nil, nil)

	r := gin.New()
	r.Use(response.RequestIDMiddleware())
	r.GET("/exams", eh.ListExams)
	r.POST("/exams", eh.CreateExam)
	r.GET("/exams/:exam_id", eh.GetExam)
	r.PUT("/exams/:exam_id", eh.UpdateExam)
	r.GET("/exams/:exam_id/summary", eh.GetSummary)
	r.POST("/exams/:exam_id/generate", jh.Generate)
	r.GET("/jobs/:job_id", jh.GetJob)
	r.GET("/classes", ph.ListClasses)
	r.GET("/students", ph.ListStudents)
	return r
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, response.Response) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

const examJSON = `{
	"school_code": "GYM1", "subject": "Mathematik", "subject_code": "Ma", "grade_level": 8,
	"class": "8a", "type": "Klassenarbeit", "number": 2, "date": "2025-03-24",
	"duration_minutes": 45, "topic": "Kegel", "school_year": "2024/2025",
	"slots": [{"question_id": 11}, {"question_id": 12}],
	"page_breaks": [0],
	"options": {"class_set_unsolved": true}
}`

func TestExamLifecycle(t *testing.T) {
	r := testRouter()

	w, resp := do(r, http.MethodPost, "/exams", examJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("missing request id")
	}

	w, _ = do(r, http.MethodGet, "/exams/1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total_points":11`) {
		t.Errorf("get = %d %s", w.Code, w.Body)
	}

	w, _ = do(r, http.MethodGet, "/exams/1/summary", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"filename":"Ma-2_8a_20250324_Komplett.pdf"`) {
		t.Errorf("summary = %d %s", w.Code, w.Body)
	}

	w, _ = do(r, http.MethodGet, "/exams", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"pagination"`) {
		t.Errorf("list = %d %s", w.Code, w.Body)
	}
}

func TestExamErrors(t *testing.T) {
	r := testRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   response.ErrCode
	}{
		{"bad id", http.MethodGet, "/exams/abc", "", http.StatusBadRequest, response.ErrInvalidID},
		{"missing", http.MethodGet, "/exams/9", "", http.StatusNotFound, response.ErrExamNotFound},
		{"update missing", http.MethodPut, "/exams/9", examJSON, http.StatusNotFound, response.ErrExamNotFound},
		{"invalid body", http.MethodPost, "/exams", `{"subject": ""}`, http.StatusBadRequest, response.ErrValidation},
		{"bad school year", http.MethodPost, "/exams", strings.Replace(examJSON, "2024/2025", "2024/2030", 1), http.StatusBadRequest, response.ErrValidation},
		{"unknown question", http.MethodPost, "/exams", strings.Replace(examJSON, `"question_id": 12`, `"question_id": 99`, 1), http.StatusUnprocessableEntity, response.ErrUnknownQuestion},
		{"break out of range", http.MethodPost, "/exams", strings.Replace(examJSON, `"page_breaks": [0]`, `"page_breaks": [2]`, 1), http.StatusUnprocessableEntity, response.ErrPageBreakRange},
		{"bad job id", http.MethodGet, "/jobs/not-a-uuid", "", http.StatusBadRequest, response.ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(r, tt.method, tt.path, tt.body)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.status, w.Body)
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want %s", resp.Error, tt.code)
			}
		})
	}
}

func TestGenerateRequiresOutput(t *testing.T) {
	r := testRouter()
	if w, _ := do(r, http.MethodPost, "/exams", examJSON); w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	w, resp := do(r, http.MethodPost, "/exams/1/generate", `{"options": {}}`)
	if w.Code != http.StatusUnprocessableEntity || resp.Error == nil || resp.Error.Code != response.ErrNoOutputSelected {
		t.Errorf("generate = %d %s", w.Code, w.Body)
	}

	w, resp = do(r, http.MethodPost, "/exams/5/generate", "")
	if w.Code != http.StatusNotFound || resp.Error.Code != response.ErrExamNotFound {
		t.Errorf("generate unknown = %d %s", w.Code, w.Body)
	}
}

func TestPoolEndpoints(t *testing.T) {
	r := testRouter()

	w, _ := do(r, http.MethodGet, "/classes?school_year=2024/2025&school=GYM1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"8b"`) {
		t.Errorf("classes = %d %s", w.Code, w.Body)
	}

	w, resp := do(r, http.MethodGet, "/students?school=GYM1", "")
	if w.Code != http.StatusBadRequest || resp.Error.Fields["school_year"] == "" || resp.Error.Fields["class"] == "" {
		t.Errorf("students without filters = %d %s", w.Code, w.Body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrExamNotFound, http.StatusNotFound},
		{service.ErrJobAlreadyRunning, http.StatusConflict},
		{compiler.ErrCompileTimeout, http.StatusGatewayTimeout},
		{&compiler.RejectedError{Status: 400, Diagnostic: "Undefined control sequence"}, http.StatusBadGateway},
		{&compiler.StructureError{Reason: "missing \\end{document}"}, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(service.ErrorCode(tt.err)); got != tt.status {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
