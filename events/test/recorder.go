package test

import (
	"context"
	"sync"
)

type PublishedEvent struct {
	Name    string
	Payload any
}

// RecordingPublisher keeps every published event in memory
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Err    error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (r *RecordingPublisher) Publish(_ context.Context, name string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, PublishedEvent{Name: name, Payload: payload})
	return nil
}

func (r *RecordingPublisher) Events() []PublishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]PublishedEvent, len(r.events))
	copy(result, r.events)
	return result
}
