package service

import (
	"context"
	"time"
)

func (s *SyncService) SetSleep(fn func(context.Context, time.Duration) error) {
	s.sleep = fn
}

func (p *Pager) SetSleep(fn func(context.Context, time.Duration) error) {
	p.sleep = fn
}

func (r *Runner) Active(workspaceID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runID, ok := r.active[workspaceID]
	return runID, ok
}
