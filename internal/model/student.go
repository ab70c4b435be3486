package model

// Student represents a roster entry (Schueler). Read-only for generation.
type Student struct {
	ID         int64  `json:"id"`
	SchoolYear string `json:"school_year"`
	School     string `json:"school"`
	// StudentID is the roster-stable number printed into the QR code.
	StudentID  int64  `json:"student_id"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Class      string `json:"class"`
	Account    string `json:"account,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Birthday   string `json:"birthday,omitempty"`
	GradeLevel int    `json:"grade_level,omitempty"`
}

// FullName returns "<given> <family>".
func (s Student) FullName() string {
	return s.GivenName + " " + s.FamilyName
}

// RosterQuery selects the students of one class.
type RosterQuery struct {
	SchoolYear string `form:"school_year" binding:"required,schoolyear"`
	School     string `form:"school" binding:"required"`
	Class      string `form:"class" binding:"required"`
}

// School represents a school with its optional logo.
type School struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Logo []byte `json:"-"`
}
