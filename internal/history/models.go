package history

import "time"

// Entry is one immutable revision-loop step. Accepted marks the terminal
// entry of its session; a session has at most one accepted entry, and a
// session with none is incomplete (abandoned), not erroneous.
type Entry struct {
	ID        int64
	Session   int64
	Type      string
	Model     string
	Prompt    string // post-fill prompt as sent to the model
	Result    string
	Feedback  string
	Accepted  bool
	Timestamp time.Time
}
