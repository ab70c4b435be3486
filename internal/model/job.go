package model

// JobState enumerates the lifecycle of a background generation job.
type JobState string

const (
	JobStateQueued  JobState = "QUEUED"
	JobStateRunning JobState = "RUNNING"
	JobStateDone    JobState = "DONE"
	JobStateFailed  JobState = "FAILED"
)

// Progress is one coarse milestone of a generation run.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// GenerationJob is the queued unit of work and its last known state.
type GenerationJob struct {
	ID       string   `json:"id"`
	ExamID   int64    `json:"exam_id"`
	State    JobState `json:"state"`
	Progress Progress `json:"progress"`
	Filename string   `json:"filename,omitempty"`
	Pages    int      `json:"pages,omitempty"`
	// Reordered is false when the reorder step failed and the compiled
	// document was kept as is.
	Reordered bool   `json:"reordered"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	// Location is the storage key of the finished document.
	Location string `json:"-"`
}

// GenerateRequest optionally overrides the stored output options for one run.
type GenerateRequest struct {
	Options *OutputOptions `json:"options"`
}

// JobMessage is the queue payload handed to the generation worker.
type JobMessage struct {
	JobID   string         `json:"job_id"`
	ExamID  int64          `json:"exam_id"`
	Options *OutputOptions `json:"options,omitempty"`
}

// Finished reports whether the job reached a terminal state.
func (j *GenerationJob) Finished() bool {
	return j.State == JobStateDone || j.State == JobStateFailed
}
