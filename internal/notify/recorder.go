package notify

import (
	"context"
	"sync"
)

// Recorder keeps raw views for assertions.
type Recorder struct {
	mu        sync.Mutex
	Questions []QuestionView
	Results   []ResultView
	Notices   []Notice
}

func (r *Recorder) PresentQuestion(_ context.Context, v QuestionView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Questions = append(r.Questions, v)
	return nil
}

func (r *Recorder) PresentResult(_ context.Context, v ResultView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Results = append(r.Results, v)
	return nil
}

func (r *Recorder) PresentNotice(_ context.Context, n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notices = append(r.Notices, n)
	return nil
}

// LastNotice returns the most recent notice key, or "".
func (r *Recorder) LastNotice() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Notices) == 0 {
		return ""
	}
	return r.Notices[len(r.Notices)-1].Key
}
