package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func TestIsSchoolYear(t *testing.T) {
	tests := map[string]bool{
		"2024/2025": true,
		"2024/2026": false,
		"2024-2025": false,
		"24/25":     false,
		"abcd/abce": false,
		"":          false,
	}
	for in, want := range tests {
		if got := IsSchoolYear(in); got != want {
			t.Errorf("IsSchoolYear(%q) = %v, want %v", in, got, want)
		}
	}
}

type rosterQuery struct {
	SchoolYear string `form:"school_year" binding:"required,schoolyear"`
	Class      string `form:"class" binding:"required"`
}

type examBody struct {
	SchoolYear string `json:"school_year" binding:"required,schoolyear"`
	Number     int    `json:"number" binding:"required,min=1"`
}

func TestBindQueryReportsFormNames(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?school_year=2024/2026", nil)

	fields := BindQuery(c, &rosterQuery{})
	if fields == nil {
		t.Fatal("expected validation errors")
	}
	if !strings.Contains(fields["school_year"], "school year") {
		t.Errorf("school_year message = %q", fields["school_year"])
	}
	if _, ok := fields["class"]; !ok {
		t.Errorf("missing class error in %v", fields)
	}
}

func TestBindJSON(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"school_year":"2024/2025","number":2}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var body examBody
	if fields := Bind(c, &body); fields != nil {
		t.Fatalf("unexpected errors: %v", fields)
	}
	if body.Number != 2 {
		t.Errorf("Number = %d", body.Number)
	}

	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"school_year":`))
	if fields := Bind(c, &body); fields["detail"] == "" {
		t.Errorf("syntax error not reported: %v", fields)
	}
}
