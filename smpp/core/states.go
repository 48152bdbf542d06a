// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"sync"
	"time"

	"go.smppd.dev/smpp/core/statejson"
	"go.smppd.dev/smpp/pdu"
)

// ErrNotAllowed returned on illegal state transition
var ErrNotAllowed = errors.New("State transition is not allowed")

// String values of possible session states
const (
	SessionOpenStateName     = "Open"
	SessionBoundTXStateName  = "BoundTX"
	SessionBoundRXStateName  = "BoundRX"
	SessionBoundTRXStateName = "BoundTRX"
	SessionUnboundStateName  = "Unbound"
	SessionClosedStateName   = "Closed"
)

// SessionState tracks where an SMPP session is between the first byte on the
// wire and the connection being torn down.
type SessionState struct {
	mu           sync.Mutex
	name         string
	lastModified int64
}

// NewSessionState returns a state machine in Open.
func NewSessionState() *SessionState {
	return &SessionState{name: SessionOpenStateName, lastModified: time.Now().UnixNano() / int64(time.Millisecond)}
}

// Name returns the current state name.
func (s *SessionState) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Describe returns the state name and the time of the last transition in
// epoch milliseconds.
func (s *SessionState) Describe() statejson.StateDescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return statejson.StateDescription{Name: s.name, LastModified: s.lastModified}
}

// IsBound reports whether a bind has been accepted and not yet unbound.
func (s *SessionState) IsBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return isBoundName(s.name)
}

// Bind moves Open to the bound state matching the bind command.
func (s *SessionState) Bind(commandID pdu.CommandID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.name != SessionOpenStateName {
		return ErrNotAllowed
	}

	switch commandID {
	case pdu.BindTransmitter:
		s.setUnsafe(SessionBoundTXStateName)
	case pdu.BindReceiver:
		s.setUnsafe(SessionBoundRXStateName)
	case pdu.BindTransceiver:
		s.setUnsafe(SessionBoundTRXStateName)
	default:
		return ErrNotAllowed
	}
	return nil
}

// Unbind moves a bound session to Unbound.
func (s *SessionState) Unbind() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isBoundName(s.name) {
		return ErrNotAllowed
	}
	s.setUnsafe(SessionUnboundStateName)
	return nil
}

// Close is allowed from every state and reports whether this call closed it.
func (s *SessionState) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.name == SessionClosedStateName {
		return false
	}
	s.setUnsafe(SessionClosedStateName)
	return true
}

// setUnsafe must be called with mu held.
func (s *SessionState) setUnsafe(name string) {
	s.name = name
	s.lastModified = time.Now().UnixNano() / int64(time.Millisecond)
}

func isBoundName(name string) bool {
	return name == SessionBoundTXStateName || name == SessionBoundRXStateName || name == SessionBoundTRXStateName
}
