// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.smppd.dev/smpp/core"
	"go.smppd.dev/smpp/core/statejson"
	"go.smppd.dev/smpp/pdu"
)

// Options tune a ServerSession.
type Options struct {
	MaxPDULength uint32
	// ReadTimeout closes the session after this long without an incoming
	// PDU. Zero disables it.
	ReadTimeout time.Duration
}

// ServerSession is the server side of one SMPP connection. Serve runs the
// read loop; WaitForBind is called once from the acceptance logic.
type ServerSession struct {
	id        uuid.UUID
	conn      net.Conn
	createdAt time.Time
	opts      Options

	state   *core.SessionState
	gate    core.BindGate
	handler *responseHandler

	writeMu sync.Mutex

	mu       sync.Mutex
	bindType pdu.CommandID
	systemID string

	closeOnce sync.Once
	done      chan struct{}

	log *log.Entry
}

// NewServerSession wraps conn. Nothing is read until Serve is called.
func NewServerSession(conn net.Conn, opts Options) *ServerSession {
	s := &ServerSession{
		id:        uuid.New(),
		conn:      conn,
		createdAt: time.Now(),
		opts:      opts,
		state:     core.NewSessionState(),
		done:      make(chan struct{}),
	}
	s.handler = &responseHandler{session: s}
	s.gate = core.NewBindGate(s.handler)
	s.log = log.WithFields(log.Fields{
		"session_id":  s.id.String(),
		"remote_addr": remoteAddr(conn),
	})
	return s
}

// ID returns the session identifier.
func (s *ServerSession) ID() uuid.UUID {
	return s.id
}

// State returns the current session state name.
func (s *ServerSession) State() string {
	return s.state.Name()
}

// Done is closed once the session is closed.
func (s *ServerSession) Done() <-chan struct{} {
	return s.done
}

// WaitForBind blocks until the peer sends a bind or timeout elapses. It may
// be called once; later calls fail with core.ErrAlreadyWaiting.
func (s *ServerSession) WaitForBind(timeout time.Duration) (*BindRequest, error) {
	req, err := s.gate.AwaitRequest(timeout)
	if err != nil {
		return nil, err
	}
	return &BindRequest{session: s, request: req}, nil
}

// Serve reads PDUs until the peer unbinds, the connection fails or Close is
// called. It always closes the session before returning. A clean shutdown
// returns nil.
func (s *ServerSession) Serve() error {
	defer s.Close()

	for {
		if s.opts.ReadTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
				return s.readError(err)
			}
		}

		p, err := pdu.ReadPDU(s.conn, s.opts.MaxPDULength)
		if err != nil {
			var statusErr *pdu.StatusError
			if !errors.As(err, &statusErr) {
				return s.readError(err)
			}
			if err := s.rejectMalformed(statusErr); err != nil {
				return err
			}
			if !statusErr.Recoverable() {
				return statusErr
			}
			continue
		}

		finished, err := s.dispatch(p)
		if err != nil || finished {
			return err
		}
	}
}

// Close closes the connection. It is safe to call more than once and from
// any goroutine.
func (s *ServerSession) Close() {
	s.closeOnce.Do(func() {
		s.state.Close()
		if err := s.conn.Close(); err != nil {
			s.log.WithError(err).Debug("Error closing connection")
		}
		close(s.done)
		s.log.Info("Session closed")
	})
}

// Describe snapshots the session for the admin API.
func (s *ServerSession) Describe() statejson.SessionDescription {
	s.mu.Lock()
	bindType, systemID := s.bindType, s.systemID
	s.mu.Unlock()

	desc := statejson.SessionDescription{
		ID:         s.id.String(),
		RemoteAddr: remoteAddr(s.conn),
		State:      s.state.Describe(),
		BindGate:   s.gate.State(),
		SystemID:   systemID,
		CreatedAt:  s.createdAt.UnixNano() / int64(time.Millisecond),
	}
	if bindType != 0 {
		desc.BindType = bindType.String()
	}
	return desc
}

func (s *ServerSession) dispatch(p pdu.PDU) (bool, error) {
	h := p.PDUHeader()
	entry := s.log.WithFields(log.Fields{"command_id": h.ID.String(), "sequence_number": h.Sequence})

	switch {
	case h.ID.IsBind():
		return false, s.processBind(p.(pdu.Bind))

	case h.ID == pdu.EnquireLink:
		entry.Debug("Enquire link")
		return false, s.writePDU(pdu.NewResponse(h))

	case h.ID == pdu.Unbind:
		if err := s.state.Unbind(); err != nil {
			entry.Debug("Unbind before bind")
		}
		entry.Info("Unbind received")
		return true, s.writePDU(pdu.NewResponse(h))

	case h.ID.IsResponse():
		entry.WithField("command_status", h.Status.String()).Debug("Ignoring response PDU")
		return false, nil

	default:
		return false, s.sendGenericNack(s.unsupportedStatus(), h.Sequence)
	}
}

func (s *ServerSession) processBind(bind pdu.Bind) error {
	entry := s.log.WithFields(log.Fields{
		"command_id":      bind.ID.String(),
		"sequence_number": bind.Sequence,
		"system_id":       bind.SystemID,
	})

	if s.state.IsBound() {
		entry.Warn("Bind on an already bound session")
		return s.handler.SendNegativeResponse(bind.ID.Response(), pdu.StatusAlreadyBound, bind.Sequence)
	}

	if err := s.gate.Deliver(bind); err != nil {
		entry.WithError(err).Warn("Duplicate bind while the first is pending")
		return s.handler.SendNegativeResponse(bind.ID.Response(), pdu.StatusAlreadyBound, bind.Sequence)
	}

	entry.Debug("Bind request delivered")
	return nil
}

func (s *ServerSession) rejectMalformed(statusErr *pdu.StatusError) error {
	h := statusErr.Header
	s.log.WithError(statusErr).WithField("sequence_number", h.Sequence).Warn("Malformed PDU")

	if statusErr.Recoverable() && h.ID.IsBind() {
		return s.handler.SendNegativeResponse(h.ID.Response(), statusErr.Status, h.Sequence)
	}

	status := statusErr.Status
	if status == pdu.StatusInvalidCommandID {
		status = s.unsupportedStatus()
	}
	return s.sendGenericNack(status, h.Sequence)
}

// unsupportedStatus answers a request this server does not handle: before a
// bind the peer is at fault for skipping the handshake.
func (s *ServerSession) unsupportedStatus() pdu.CommandStatus {
	if s.state.IsBound() {
		return pdu.StatusInvalidCommandID
	}
	return pdu.StatusInvalidBindStatus
}

func (s *ServerSession) readError(err error) error {
	select {
	case <-s.done:
		return nil
	default:
	}

	if errors.Is(err, io.EOF) {
		s.log.Info("Peer closed connection")
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		s.log.WithField("read_timeout", s.opts.ReadTimeout).Warn("Read timeout")
		return ErrReadTimeout
	}
	return err
}

func (s *ServerSession) sendGenericNack(status pdu.CommandStatus, sequence uint32) error {
	return s.writePDU(pdu.NewGenericNack(status, sequence))
}

func (s *ServerSession) writePDU(p pdu.PDU) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return pdu.WritePDU(s.conn, p)
}

func (s *ServerSession) bound(bind pdu.Bind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindType = bind.ID
	s.systemID = bind.SystemID
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
