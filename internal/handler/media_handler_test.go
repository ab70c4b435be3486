package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/model"
	"github.com/stemsi/klausurgen/internal/response"
	"github.com/stemsi/klausurgen/internal/service"
)

type memWriter struct {
	graphics []model.Graphic
}

func (m *memWriter) Create(_ context.Context, g *model.Graphic) error {
	m.graphics = append(m.graphics, *g)
	return nil
}

func (m *memWriter) SetLogo(context.Context, string, []byte) error { return nil }

type memQuestionWriter struct{ n int64 }

func (m *memQuestionWriter) Create(_ context.Context, q *model.Question) error {
	m.n++
	q.ID = 200 + m.n
	return nil
}

func uploadRouter(w *memWriter, maxBytes int64) *gin.Engine {
	media := service.NewMediaService(memPool{}, w, w, maxBytes, zerolog.Nop())
	questions := service.NewQuestionService(memPool{}, &memQuestionWriter{}, zerolog.Nop())
	mh := NewMediaHandler(media)
	qh := NewQuestionHandler(questions)

	r := gin.New()
	r.POST("/questions", qh.CreateQuestion)
	r.GET("/questions/:question_id", qh.GetQuestion)
	r.POST("/questions/:question_id/graphics", mh.UploadGraphic)
	r.PUT("/schools/:code/logo", mh.UploadLogo)
	return r
}

func multipartBody(t *testing.T, name string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if name != "" {
		if err := mw.WriteField("name", name); err != nil {
			t.Fatal(err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "upload.bin")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(file); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadGraphic(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name   string
		path   string
		field  string
		file   []byte
		status int
	}{
		{"stored", "/questions/11/graphics", "kegel", png, http.StatusCreated},
		{"unknown question", "/questions/99/graphics", "kegel", png, http.StatusNotFound},
		{"bad id", "/questions/x/graphics", "kegel", png, http.StatusBadRequest},
		{"no file", "/questions/11/graphics", "kegel", nil, http.StatusBadRequest},
		{"no name", "/questions/11/graphics", "", png, http.StatusBadRequest},
		{"not an image", "/questions/11/graphics", "kegel", []byte("hello"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &memWriter{}
			body, ctype := multipartBody(t, tt.field, tt.file)
			req := httptest.NewRequest(http.MethodPost, tt.path, body)
			req.Header.Set("Content-Type", ctype)
			rec := httptest.NewRecorder()
			uploadRouter(w, 1024).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			if tt.status == http.StatusCreated && (len(w.graphics) != 1 || !strings.Contains(rec.Body.String(), `"file":"kegel.png"`)) {
				t.Errorf("graphics = %+v body %s", w.graphics, rec.Body)
			}
		})
	}
}

func TestCreateQuestionEndpoint(t *testing.T) {
	r := uploadRouter(&memWriter{}, 0)

	w, _ := do(r, http.MethodPost, "/questions", `{"title":"Kugel","subject":"Mathematik","points":3,"body":"Berechne $V$."}`)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"id":201`) {
		t.Errorf("create = %d %s", w.Code, w.Body)
	}

	w, resp := do(r, http.MethodPost, "/questions", `{"title":"Kugel","subject":"Mathematik","body":"\\textbf{offen"}`)
	if w.Code != http.StatusUnprocessableEntity || resp.Error.Code != response.ErrMarkupUnbalanced {
		t.Errorf("unbalanced = %d %s", w.Code, w.Body)
	}

	w, resp = do(r, http.MethodGet, "/questions/99", "")
	if w.Code != http.StatusNotFound || resp.Error.Code != response.ErrQuestionNotFound {
		t.Errorf("get missing = %d %s", w.Code, w.Body)
	}
}
