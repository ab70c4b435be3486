package model

import (
	"strconv"
	"time"
)

// Difficulty is the difficulty tier of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "leicht"
	DifficultyMedium Difficulty = "mittel"
	DifficultyHard   Difficulty = "schwer"
)

// Demand is the cognitive-demand tier (Anforderungsbereich) of a question.
type Demand string

const (
	DemandI   Demand = "I"
	DemandII  Demand = "II"
	DemandIII Demand = "III"
)

// MinutesPerPoint is the fixed ratio used for time estimates.
const MinutesPerPoint = 2

// Question represents a pool question (Aufgabe).
type Question struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Subject    string     `json:"subject"`
	Topic      string     `json:"topic,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Demand     Demand     `json:"demand,omitempty"`
	Points     int        `json:"points"`
	// Body is LaTeX markup and is embedded verbatim.
	Body string `json:"body"`
	// Solution is the generated solution markup; empty when none exists.
	Solution    string    `json:"solution,omitempty"`
	MinSpaceCM  float64   `json:"min_space_cm"`
	IsVariation bool      `json:"is_variation"`
	GradeLevel  int       `json:"grade_level,omitempty"`
	Keywords    string    `json:"keywords,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EstimatedMinutes returns the estimated working time for this question.
func (q Question) EstimatedMinutes() int {
	return q.Points * MinutesPerPoint
}

// HasSolution reports whether a generated solution is available.
func (q Question) HasSolution() bool {
	return q.Solution != ""
}

// QuestionRequest is the payload for adding a question to the pool.
type QuestionRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Subject     string     `json:"subject" binding:"required,max=100"`
	Topic       string     `json:"topic" binding:"max=255"`
	Difficulty  Difficulty `json:"difficulty" binding:"omitempty,oneof=leicht mittel schwer"`
	Demand      Demand     `json:"demand" binding:"omitempty,oneof=I II III"`
	Points      int        `json:"points" binding:"min=0,max=100"`
	Body        string     `json:"body" binding:"required"`
	Solution    string     `json:"solution"`
	MinSpaceCM  float64    `json:"min_space_cm" binding:"min=0,max=30"`
	IsVariation bool       `json:"is_variation"`
	GradeLevel  int        `json:"grade_level" binding:"omitempty,min=1,max=13"`
	Keywords    string     `json:"keywords" binding:"max=500"`
}

// ToQuestion converts the request into a pool question.
func (r *QuestionRequest) ToQuestion() *Question {
	return &Question{
		Title:       r.Title,
		Subject:     r.Subject,
		Topic:       r.Topic,
		Difficulty:  r.Difficulty,
		Demand:      r.Demand,
		Points:      r.Points,
		Body:        r.Body,
		Solution:    r.Solution,
		MinSpaceCM:  r.MinSpaceCM,
		IsVariation: r.IsVariation,
		GradeLevel:  r.GradeLevel,
		Keywords:    r.Keywords,
	}
}

// QuestionFilter narrows a question pool lookup. Zero values are ignored.
type QuestionFilter struct {
	Subject    string     `form:"subject"`
	GradeLevel int        `form:"grade" binding:"omitempty,min=1,max=13"`
	Difficulty Difficulty `form:"difficulty" binding:"omitempty,oneof=leicht mittel schwer"`
	Demand     Demand     `form:"demand" binding:"omitempty,oneof=I II III"`
	Search     string     `form:"q" binding:"omitempty,max=200"`
}

// Graphic is an image attached to a question and referenced from its body
// via \includegraphics{Name}.
type Graphic struct {
	QuestionID int64  `json:"question_id"`
	Name       string `json:"name"`
	FileType   string `json:"file_type"`
	Blob       []byte `json:"-"`
}

// FileName is the graphic name with its normalised extension, e.g. "kegel.png".
func (g Graphic) FileName() string {
	ext := g.FileType
	if ext == "jpg" || ext == "JPG" {
		ext = "jpeg"
	}
	return g.Name + "." + ext
}

// AttachmentName is the file the compiler receives. Names are unique per
// question only, so question graphics are prefixed with their question id.
// Graphics without a question (QuestionID 0) are shared by all questions.
func (g Graphic) AttachmentName() string {
	if g.QuestionID == 0 {
		return g.FileName()
	}
	return "q" + strconv.FormatInt(g.QuestionID, 10) + "_" + g.FileName()
}

// Attachment is a named binary resource sent along with the markup.
type Attachment struct {
	Name    string
	Content []byte
}
