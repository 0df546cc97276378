package storage

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
)

type record struct {
	meta domain.SessionMeta
	data []byte
}

// Memory keeps serialized sessions for the lifetime of the process.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]record
}

func NewMemory() *Memory { return &Memory{sessions: map[string]record{}} }

func (s *Memory) Save(ctx context.Context, id string, meta domain.SessionMeta, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("invalid session: missing ID")
	}
	meta.ID = id
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[id]; ok && meta.CreatedAt == 0 {
		meta.CreatedAt = prev.meta.CreatedAt
	}
	s.sessions[id] = record{meta: meta, data: append([]byte(nil), data...)}
	return nil
}

func (s *Memory) Load(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.sessions[strings.TrimSpace(id)]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ports.ErrNotFound)
	}
	return append([]byte(nil), r.data...), nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.TrimSpace(id)
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session %q: %w", id, ports.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// List returns every session, oldest first.
func (s *Memory) List(ctx context.Context) ([]domain.SessionMeta, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]domain.SessionMeta, 0, len(s.sessions))
	for _, r := range s.sessions {
		out = append(out, r.meta)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b domain.SessionMeta) int {
		if a.CreatedAt != b.CreatedAt {
			return cmp.Compare(a.CreatedAt, b.CreatedAt)
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

var _ ports.Store = (*Memory)(nil)
