package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	outboxDomain "github.com/allisson/helpdesk/internal/outbox/domain"
	sessionDomain "github.com/allisson/helpdesk/internal/session/domain"
)

// memoryLedger is a linearizable in-memory SessionRepository.
type memoryLedger struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]sessionDomain.Session
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{sessions: make(map[uuid.UUID]sessionDomain.Session)}
}

func (l *memoryLedger) Create(_ context.Context, session *sessionDomain.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[session.ID] = *session
	return nil
}

func (l *memoryLedger) Get(_ context.Context, principalID, sessionID uuid.UUID) (*sessionDomain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	session, ok := l.sessions[sessionID]
	if !ok || session.PrincipalID != principalID {
		return nil, sessionDomain.ErrSessionNotFound
	}
	return &session, nil
}

func (l *memoryLedger) ReplaceToken(
	_ context.Context,
	principalID, sessionID uuid.UUID,
	currentHash, newHash string,
	newExpiresAt time.Time,
) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	session, ok := l.sessions[sessionID]
	if !ok || session.PrincipalID != principalID || session.TokenHash != currentHash {
		return sessionDomain.ErrSessionConflict
	}
	session.TokenHash = newHash
	session.ExpiresAt = newExpiresAt
	l.sessions[sessionID] = session
	return nil
}

func (l *memoryLedger) Delete(_ context.Context, principalID, sessionID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if session, ok := l.sessions[sessionID]; ok && session.PrincipalID == principalID {
		delete(l.sessions, sessionID)
	}
	return nil
}

func (l *memoryLedger) DeleteAllByPrincipal(_ context.Context, principalID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var count int64
	for id, session := range l.sessions {
		if session.PrincipalID == principalID {
			delete(l.sessions, id)
			count++
		}
	}
	return count, nil
}

func (l *memoryLedger) ListByPrincipal(_ context.Context, principalID uuid.UUID) ([]*sessionDomain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sessions := make([]*sessionDomain.Session, 0)
	for _, session := range l.sessions {
		if session.PrincipalID == principalID {
			s := session
			sessions = append(sessions, &s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].CreatedAt.After(sessions[j].CreatedAt) })
	return sessions, nil
}

func (l *memoryLedger) DeleteExpired(_ context.Context, before time.Time, dryRun bool) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var count int64
	for id, session := range l.sessions {
		if session.ExpiresAt.Before(before) {
			if !dryRun {
				delete(l.sessions, id)
			}
			count++
		}
	}
	return count, nil
}

func (l *memoryLedger) count(principalID uuid.UUID) int {
	sessions, _ := l.ListByPrincipal(context.Background(), principalID)
	return len(sessions)
}

func (l *memoryLedger) expire(sessionID uuid.UUID, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	session := l.sessions[sessionID]
	session.ExpiresAt = at
	l.sessions[sessionID] = session
}

// principalDirectory is an in-memory PrincipalLookup.
type principalDirectory struct {
	mu         sync.Mutex
	principals map[uuid.UUID]sessionDomain.Principal
}

func newPrincipalDirectory(principals ...sessionDomain.Principal) *principalDirectory {
	d := &principalDirectory{principals: make(map[uuid.UUID]sessionDomain.Principal)}
	for _, p := range principals {
		d.principals[p.ID] = p
	}
	return d
}

func (d *principalDirectory) FindPrincipalByID(_ context.Context, id uuid.UUID) (*sessionDomain.Principal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.principals[id]
	if !ok {
		return nil, sessionDomain.ErrPrincipalNotFound
	}
	return &p, nil
}

func (d *principalDirectory) put(p sessionDomain.Principal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.principals[p.ID] = p
}

func (d *principalDirectory) remove(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.principals, id)
}

// eventRecorder collects outbox events.
type eventRecorder struct {
	mu     sync.Mutex
	events []*outboxDomain.OutboxEvent
	err    error
}

func (r *eventRecorder) Create(_ context.Context, event *outboxDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.EventType)
	}
	return types
}
