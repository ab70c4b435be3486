package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// JobStatusKey returns the hash key holding a generation job's state
func (r *CacheKeyStruct) JobStatusKey(jobID string) string {
	return fmt.Sprintf("job:%s:status", jobID)
}

// JobProgressChannel returns the Redis PubSub channel a generation job reports progress on
func (r *CacheKeyStruct) JobProgressChannel(jobID string) string {
	return fmt.Sprintf("job:%s:progress", jobID)
}

// ExamActiveJobKey returns the key pointing at the running job of an exam
func (r *CacheKeyStruct) ExamActiveJobKey(examID int64) string {
	return fmt.Sprintf("exam:%d:active_job", examID)
}

var CacheKey = NewCacheKeyStruct()
