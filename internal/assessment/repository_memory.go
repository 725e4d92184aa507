package assessment

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps sessions in process memory. Stored sessions are
// copied on the way in and out so callers never share state.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[uuid.UUID]*Session)}
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.clone(), nil
}

func (r *MemoryRepository) Save(_ context.Context, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s.clone()
	return nil
}

func (s *Session) clone() *Session {
	out := *s
	out.Assessment = s.Assessment.clone()
	out.Transcript = append([]Message(nil), s.Transcript...)
	if s.Providers != nil {
		out.Providers = make([]Provider, len(s.Providers))
		for i, p := range s.Providers {
			if p.TopReview != nil {
				r := *p.TopReview
				p.TopReview = &r
			}
			out.Providers[i] = p
		}
	}
	if s.Report != nil {
		r := *s.Report
		r.Data = append([]byte(nil), s.Report.Data...)
		out.Report = &r
	}
	return &out
}
