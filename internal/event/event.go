package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Topic is a hierarchical event type using dot notation.
type Topic string

// Wildcards usable in subscription patterns.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	separator      = "."
)

// Editor topics.
const (
	TopicBufferChanged   Topic = "buffer.changed"
	TopicEditorActivated Topic = "editor.activated"
	TopicConfigReloaded  Topic = "config.reloaded"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Validate reports whether the topic is usable.
func (t Topic) Validate() error {
	if t == "" {
		return ErrInvalidTopic
	}
	for _, seg := range strings.Split(string(t), separator) {
		if seg == "" {
			return ErrInvalidTopic
		}
	}
	return nil
}

// Matches reports whether the concrete topic t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(strings.Split(string(t), separator), strings.Split(string(pattern), separator))
}

func matchSegments(topic, pattern []string) bool {
	for i, p := range pattern {
		if p == WildcardMulti {
			return true
		}
		if i >= len(topic) {
			return false
		}
		if p != WildcardSingle && p != topic[i] {
			return false
		}
	}
	return len(topic) == len(pattern)
}

// Event is a published event.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string

	// Topic is the event type.
	Topic Topic

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the publishing component.
	Source string

	// Payload carries topic-specific data.
	Payload any
}

// New creates an event with a fresh ID and timestamp.
func New(t Topic, payload any, source string) Event {
	return Event{
		ID:        uuid.New().String(),
		Topic:     t,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// BufferChanged is the payload of TopicBufferChanged.
type BufferChanged struct {
	BufferID string
	Revision uint64
}

// EditorActivated is the payload of TopicEditorActivated.
type EditorActivated struct {
	BufferID   string
	LanguageID string
}

// ConfigReloaded is the payload of TopicConfigReloaded.
type ConfigReloaded struct {
	Path string
}
