package console

import "sync"

// Level tags a recorded line.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelPlain   Level = "plain"
	LevelBanner  Level = "banner"
)

// Entry is a single recorded line.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps lines in memory instead of printing them.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// Info records msg at LevelInfo.
func (r *Recorder) Info(msg string) { r.add(LevelInfo, msg) }

// Success records msg at LevelSuccess.
func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }

// Warning records msg at LevelWarning.
func (r *Recorder) Warning(msg string) { r.add(LevelWarning, msg) }

// Error records msg at LevelError.
func (r *Recorder) Error(msg string) { r.add(LevelError, msg) }

// Plain records msg at LevelPlain.
func (r *Recorder) Plain(msg string) { r.add(LevelPlain, msg) }

// Banner records msg at LevelBanner.
func (r *Recorder) Banner(msg string) { r.add(LevelBanner, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the messages recorded at level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
