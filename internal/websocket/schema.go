package websocket

import "github.com/stemsi/klausurgen/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventProgress Event = "progress"
	EventDone     Event = "done"
	EventFailed   Event = "failed"
	EventPong     Event = "pong"
)

// ProgressResponse carries one milestone of a running generation job.
type ProgressResponse struct {
	Event    Event          `json:"event"`
	JobID    string         `json:"job_id"`
	State    model.JobState `json:"state"`
	Percent  int            `json:"percent"`
	Message  string         `json:"message"`
	Filename string         `json:"filename,omitempty"`
	Pages    int            `json:"pages,omitempty"`
	// Error and Code are set on EventFailed.
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}

// NewProgressResponse converts a job snapshot into the event sent to clients.
func NewProgressResponse(job *model.GenerationJob) ProgressResponse {
	ev := EventProgress
	switch job.State {
	case model.JobStateDone:
		ev = EventDone
	case model.JobStateFailed:
		ev = EventFailed
	}
	return ProgressResponse{
		Event:    ev,
		JobID:    job.ID,
		State:    job.State,
		Percent:  job.Progress.Percent,
		Message:  job.Progress.Message,
		Filename: job.Filename,
		Pages:    job.Pages,
		Error:    job.Error,
		Code:     job.ErrorCode,
	}
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
