package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key holding the JTI of a student's current login
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// EventActivationKey returns the hash key holding an event's active question
func (r *CacheKeyStruct) EventActivationKey(eventID string) string {
	return fmt.Sprintf("event:%s:activation", eventID)
}

// EventQuizChannel returns the Redis PubSub channel carrying quiz signals for an event
func (r *CacheKeyStruct) EventQuizChannel(eventID string) string {
	return fmt.Sprintf("event:%s:quiz", eventID)
}

var CacheKey = NewCacheKeyStruct()
