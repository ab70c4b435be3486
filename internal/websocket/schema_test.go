package websocket

import (
	"testing"

	"github.com/stemsi/klausurgen/internal/model"
)

func TestNewProgressResponse(t *testing.T) {
	tests := []struct {
		job  model.GenerationJob
		want Event
	}{
		{model.GenerationJob{State: model.JobStateRunning, Progress: model.Progress{Percent: 60}}, EventProgress},
		{model.GenerationJob{State: model.JobStateDone, Filename: "x.pdf"}, EventDone},
		{model.GenerationJob{State: model.JobStateFailed, Error: "boom", ErrorCode: "COMPILE_TIMEOUT"}, EventFailed},
	}
	for _, tt := range tests {
		got := NewProgressResponse(&tt.job)
		if got.Event != tt.want {
			t.Errorf("state %s: event = %s, want %s", tt.job.State, got.Event, tt.want)
		}
		if got.Percent != tt.job.Progress.Percent || got.Code != tt.job.ErrorCode {
			t.Errorf("fields not copied: %+v", got)
		}
	}
}
