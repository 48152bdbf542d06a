// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"go.smppd.dev/smpp/core/statejson"
	"go.smppd.dev/smpp/session"
)

// ErrSessionIDCollision means that a session with the same ID already exists in SessionsMap
var ErrSessionIDCollision = errors.New("ErrSessionIDCollision")

// SessionsMap stores live sessions indexed by ID
type SessionsMap struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*session.ServerSession
}

// NewSessionsMap creates empty SessionsMap
func NewSessionsMap() *SessionsMap {
	return &SessionsMap{byID: make(map[uuid.UUID]*session.ServerSession)}
}

// Insert places s into SessionsMap. Error is returned if a session with this ID already exists
func (m *SessionsMap) Insert(s *session.ServerSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, collision := m.byID[s.ID()]; collision {
		return ErrSessionIDCollision
	}
	m.byID[s.ID()] = s
	return nil
}

// Remove drops the session with the given ID, if present
func (m *SessionsMap) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

// FindByID finds session by ID
func (m *SessionsMap) FindByID(id uuid.UUID) (s *session.ServerSession, found bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, found = m.byID[id]
	return
}

// Len returns the number of live sessions
func (m *SessionsMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Visit iterates through sessions, calling cb for each of them. cb runs
// without the map lock held.
func (m *SessionsMap) Visit(cb func(*session.ServerSession)) {
	m.mu.RLock()
	sessions := make([]*session.ServerSession, 0, len(m.byID))
	for _, s := range m.byID {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		cb(s)
	}
}

// Describe returns every session, oldest first
func (m *SessionsMap) Describe() statejson.SessionsDescription {
	desc := statejson.SessionsDescription{Sessions: []statejson.SessionDescription{}}
	m.Visit(func(s *session.ServerSession) {
		desc.Sessions = append(desc.Sessions, s.Describe())
	})
	sort.Slice(desc.Sessions, func(i, j int) bool {
		if desc.Sessions[i].CreatedAt != desc.Sessions[j].CreatedAt {
			return desc.Sessions[i].CreatedAt < desc.Sessions[j].CreatedAt
		}
		return desc.Sessions[i].ID < desc.Sessions[j].ID
	})
	return desc
}

// DescribeByID describes one session
func (m *SessionsMap) DescribeByID(id uuid.UUID) (statejson.SessionDescription, bool) {
	s, found := m.FindByID(id)
	if !found {
		return statejson.SessionDescription{}, false
	}
	return s.Describe(), true
}

// CloseByID closes one session and reports whether it was found. The session
// leaves the map once its read loop returns.
func (m *SessionsMap) CloseByID(id uuid.UUID) bool {
	s, found := m.FindByID(id)
	if found {
		s.Close()
	}
	return found
}
