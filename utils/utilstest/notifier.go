// Package utilstest holds test doubles for the utils package.
package utilstest

import (
	"sync"

	"vibin_client/utils"
)

// RecordingNotifier keeps every notice it receives
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []utils.Notice
}

func (r *RecordingNotifier) Notify(n utils.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices
func (r *RecordingNotifier) Notices() []utils.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]utils.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many notices of kind were recorded
func (r *RecordingNotifier) Count(kind utils.NoticeKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Kind == kind {
			n++
		}
	}
	return n
}
