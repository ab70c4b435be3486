package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExamType enumerates the kinds of written assessments.
type ExamType string

const (
	ExamTypeClassTest ExamType = "Klassenarbeit"
	ExamTypeExam      ExamType = "Klausur"
	ExamTypeTest      ExamType = "Test"
)

// CompleteSuffix marks the class-set artifact containing every requested copy.
const CompleteSuffix = "_Komplett.pdf"

var (
	ErrSlotOutOfRange      = errors.New("slot index out of range")
	ErrPageBreakOutOfRange = errors.New("page break index out of range")
)

// ExamQuestionSlot is a question placed into an exam (KlausurAufgabe).
// Inactive slots keep their position but are left out of totals and the document.
type ExamQuestionSlot struct {
	Question Question `json:"question"`
	Position int      `json:"position"`
	Page     int      `json:"page"`
	Active   bool     `json:"active"`
	// BreakAfter forces a page break after this slot in the rendered copy.
	BreakAfter bool `json:"break_after"`
}

// OutputOptions selects which copy kinds the generated document contains.
type OutputOptions struct {
	SampleUnsolved   bool `json:"sample_unsolved"`
	SampleSolved     bool `json:"sample_solved"`
	ClassSetUnsolved bool `json:"class_set_unsolved"`
	ClassSetSolved   bool `json:"class_set_solved"`
}

// Any reports whether at least one copy kind is requested.
func (o OutputOptions) Any() bool {
	return o.SampleUnsolved || o.SampleSolved || o.ClassSetUnsolved || o.ClassSetSolved
}

// PerStudent reports whether a per-student set is requested.
func (o OutputOptions) PerStudent() bool {
	return o.ClassSetUnsolved || o.ClassSetSolved
}

// PerStudentKinds returns how many per-student copy kinds are requested.
func (o OutputOptions) PerStudentKinds() int {
	n := 0
	if o.ClassSetUnsolved {
		n++
	}
	if o.ClassSetSolved {
		n++
	}
	return n
}

// Exam is the aggregate root of one generation run (Klausur).
type Exam struct {
	ID              int64              `json:"id"`
	School          *School            `json:"school,omitempty"`
	SchoolCode      string             `json:"school_code"`
	Subject         string             `json:"subject"`
	SubjectCode     string             `json:"subject_code"`
	GradeLevel      int                `json:"grade_level"`
	Class           string             `json:"class"`
	Type            ExamType           `json:"type"`
	Number          int                `json:"number"`
	Date            string             `json:"date"`
	DurationMinutes int                `json:"duration_minutes"`
	Topic           string             `json:"topic"`
	SchoolYear      string             `json:"school_year"`
	Slots           []ExamQuestionSlot `json:"slots"`
	Students        []Student          `json:"students"`
	Options         OutputOptions      `json:"options"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ActiveSlots returns the active slots in stored order.
func (e *Exam) ActiveSlots() []ExamQuestionSlot {
	active := make([]ExamQuestionSlot, 0, len(e.Slots))
	for _, s := range e.Slots {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// TotalPoints is the sum of the active questions' points.
func (e *Exam) TotalPoints() int {
	total := 0
	for _, s := range e.Slots {
		if s.Active {
			total += s.Question.Points
		}
	}
	return total
}

// EstimatedMinutes is the estimated working time of the active questions.
func (e *Exam) EstimatedMinutes() int {
	return e.TotalPoints() * MinutesPerPoint
}

func (e *Exam) ActiveCount() int {
	n := 0
	for _, s := range e.Slots {
		if s.Active {
			n++
		}
	}
	return n
}

func (e *Exam) StudentCount() int {
	return len(e.Students)
}

// FilenameStem builds e.g. "Ma-2_8a_20250324".
func (e *Exam) FilenameStem() string {
	date := strings.NewReplacer("-", "", ".", "").Replace(e.Date)
	return fmt.Sprintf("%s-%d_%s_%s", e.SubjectCode, e.Number, e.Class, date)
}

// CompleteFilename is the name of the combined class-set artifact.
func (e *Exam) CompleteFilename() string {
	return e.FilenameStem() + CompleteSuffix
}

// Renumber makes positions dense and equal to list index + 1.
func (e *Exam) Renumber() {
	for i := range e.Slots {
		e.Slots[i].Position = i + 1
	}
}

// MoveSlot moves the slot at index from to index to (both 0-based) and renumbers.
func (e *Exam) MoveSlot(from, to int) error {
	if from < 0 || from >= len(e.Slots) || to < 0 || to >= len(e.Slots) {
		return ErrSlotOutOfRange
	}
	slot := e.Slots[from]
	e.Slots = append(e.Slots[:from], e.Slots[from+1:]...)
	e.Slots = append(e.Slots[:to], append([]ExamQuestionSlot{slot}, e.Slots[to:]...)...)
	e.Renumber()
	return nil
}

// PageBreaks returns the 0-based indices into the active order that are
// followed by a forced page break.
func (e *Exam) PageBreaks() []int {
	breaks := []int{}
	idx := 0
	for _, s := range e.Slots {
		if !s.Active {
			continue
		}
		if s.BreakAfter {
			breaks = append(breaks, idx)
		}
		idx++
	}
	return breaks
}

// SetPageBreaks replaces the forced page breaks with the given 0-based
// indices into the active order.
func (e *Exam) SetPageBreaks(breaks []int) error {
	active := e.ActiveCount()
	want := make(map[int]bool, len(breaks))
	for _, b := range breaks {
		if b < 0 || b >= active {
			return fmt.Errorf("%w: %d (active questions: %d)", ErrPageBreakOutOfRange, b, active)
		}
		want[b] = true
	}

	idx := 0
	for i := range e.Slots {
		if !e.Slots[i].Active {
			e.Slots[i].BreakAfter = false
			continue
		}
		e.Slots[i].BreakAfter = want[idx]
		idx++
	}
	return nil
}

// SlotRef is the persisted form of a slot inside questions_json.
type SlotRef struct {
	QuestionID int64 `json:"question_id"`
	Active     bool  `json:"active"`
	Page       int   `json:"page"`
}

// SlotRefs returns the persisted selection in stored order.
func (e *Exam) SlotRefs() []SlotRef {
	refs := make([]SlotRef, len(e.Slots))
	for i, s := range e.Slots {
		refs[i] = SlotRef{QuestionID: s.Question.ID, Active: s.Active, Page: s.Page}
	}
	return refs
}

// ExamRecord is an exam row as stored, before questions and roster are resolved.
type ExamRecord struct {
	ID              int64         `json:"id"`
	SchoolCode      string        `json:"school_code"`
	Subject         string        `json:"subject"`
	SubjectCode     string        `json:"subject_code"`
	GradeLevel      int           `json:"grade_level"`
	Class           string        `json:"class"`
	Type            ExamType      `json:"type"`
	Number          int           `json:"number"`
	Date            string        `json:"date"`
	DurationMinutes int           `json:"duration_minutes"`
	Topic           string        `json:"topic"`
	SchoolYear      string        `json:"school_year"`
	Slots           []SlotRef     `json:"slots"`
	PageBreaks      []int         `json:"page_breaks"`
	Options         OutputOptions `json:"options"`
	TotalPoints     int           `json:"total_points"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// SlotRequest selects one question for an exam.
type SlotRequest struct {
	QuestionID int64 `json:"question_id" binding:"required,min=1"`
	Active     *bool `json:"active"`
	Page       int   `json:"page" binding:"omitempty,min=1"`
}

// ExamRequest is the payload for creating or replacing an exam.
type ExamRequest struct {
	SchoolCode      string        `json:"school_code" binding:"required,max=20"`
	Subject         string        `json:"subject" binding:"required,max=100"`
	SubjectCode     string        `json:"subject_code" binding:"required,max=10"`
	GradeLevel      int           `json:"grade_level" binding:"required,min=1,max=13"`
	Class           string        `json:"class" binding:"required,max=20"`
	Type            ExamType      `json:"type" binding:"required,oneof=Klassenarbeit Klausur Test"`
	Number          int           `json:"number" binding:"required,min=1"`
	Date            string        `json:"date" binding:"required,datetime=2006-01-02"`
	DurationMinutes int           `json:"duration_minutes" binding:"required,min=1,max=480"`
	Topic           string        `json:"topic" binding:"required,min=1,max=255"`
	SchoolYear      string        `json:"school_year" binding:"required,schoolyear"`
	Slots           []SlotRequest `json:"slots" binding:"dive"`
	PageBreaks      []int         `json:"page_breaks" binding:"omitempty,dive,min=0"`
	Options         OutputOptions `json:"options"`
}

// ToRecord converts the request into a storable record.
func (r *ExamRequest) ToRecord() *ExamRecord {
	slots := make([]SlotRef, len(r.Slots))
	for i, s := range r.Slots {
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		page := s.Page
		if page == 0 {
			page = 1
		}
		slots[i] = SlotRef{QuestionID: s.QuestionID, Active: active, Page: page}
	}
	breaks := r.PageBreaks
	if breaks == nil {
		breaks = []int{}
	}
	return &ExamRecord{
		SchoolCode:      r.SchoolCode,
		Subject:         r.Subject,
		SubjectCode:     r.SubjectCode,
		GradeLevel:      r.GradeLevel,
		Class:           r.Class,
		Type:            r.Type,
		Number:          r.Number,
		Date:            r.Date,
		DurationMinutes: r.DurationMinutes,
		Topic:           r.Topic,
		SchoolYear:      r.SchoolYear,
		Slots:           slots,
		PageBreaks:      breaks,
		Options:         r.Options,
	}
}

// ExamSummary is the derived overview shown before generation.
type ExamSummary struct {
	ExamID           int64  `json:"exam_id"`
	ActiveQuestions  int    `json:"active_questions"`
	TotalPoints      int    `json:"total_points"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Students         int    `json:"students"`
	PageBreaks       []int  `json:"page_breaks"`
	EstimatedPages   int    `json:"estimated_pages"`
	Filename         string `json:"filename"`
}
