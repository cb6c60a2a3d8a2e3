// ABOUTME: Recording Notifier implementation for use in tests
// ABOUTME: Captures notices in order so assertions can inspect them

package notify

import "sync"

// Level classifies a recorded notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice is a single recorded notification.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Recorder captures notices for later inspection. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Success(title, description string) {
	r.record(LevelSuccess, title, description)
}

func (r *Recorder) Info(title, description string) {
	r.record(LevelInfo, title, description)
}

func (r *Recorder) Error(title, description string) {
	r.record(LevelError, title, description)
}

func (r *Recorder) record(level Level, title, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Title: title, Description: description})
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Errors returns only the error-level notices.
func (r *Recorder) Errors() []Notice {
	var out []Notice
	for _, n := range r.Notices() {
		if n.Level == LevelError {
			out = append(out, n)
		}
	}
	return out
}

// Reset clears all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
