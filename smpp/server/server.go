// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"go.smppd.dev/smpp/config"
	"go.smppd.dev/smpp/pdu"
	"go.smppd.dev/smpp/session"
)

var errServerClosed = errors.New("server closed")

// Server accepts SMPP connections and runs the bind handshake on each.
type Server struct {
	cfg      config.Config
	auth     session.Authenticator
	sessions *SessionsMap
	listener net.Listener

	mu      sync.Mutex
	closed  bool
	handled sync.WaitGroup
}

// NewServer creates a new SMPP server
//
// Listen() and Serve() are separate so the caller knows the port is bound
// before anything else starts. When the configured port is 0 the OS picks
// one; Addr() reports it.
func NewServer(cfg config.Config, auth session.Authenticator) *Server {
	return &Server{
		cfg:      cfg,
		auth:     auth,
		sessions: NewSessionsMap(),
	}
}

// Listen on the configured address
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return err
	}

	s.listener = ln
	log.WithField("address", ln.Addr().String()).Info("SMPP server listening")
	return nil
}

// Addr is the bound listener address; nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Sessions returns the registry of live sessions
func (s *Server) Sessions() *SessionsMap {
	return s.sessions
}

// Serve connections and close on cancelation signals. Listen must be called
// first.
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()

	errs := make(chan error, 1)
	go func() {
		errs <- s.acceptLoop()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting, closes every live session and waits for their read
// loops to finish
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.sessions.Visit(func(sess *session.ServerSession) {
		sess.Close()
	})
	s.handled.Wait()

	log.Info("SMPP server closed")
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				return nil
			}
			return err
		}

		sess, err := s.register(conn)
		if err != nil {
			conn.Close()
			if errors.Is(err, errServerClosed) {
				return nil
			}
			log.WithError(err).Error("Failed to register session")
			continue
		}

		go s.serveSession(sess)
		go s.acceptBind(sess)
	}
}

// register must finish before Close can observe the session, so it shares the
// closed check with Close.
func (s *Server) register(conn net.Conn) (*session.ServerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errServerClosed
	}

	sess := session.NewServerSession(conn, session.Options{
		MaxPDULength: s.cfg.MaxPDULength,
		ReadTimeout:  s.cfg.ReadTimeout,
	})
	if err := s.sessions.Insert(sess); err != nil {
		return nil, err
	}
	s.handled.Add(1)

	log.WithFields(log.Fields{
		"session_id":  sess.ID().String(),
		"remote_addr": conn.RemoteAddr().String(),
	}).Info("Accepted connection")
	return sess, nil
}

func (s *Server) serveSession(sess *session.ServerSession) {
	defer s.handled.Done()
	defer s.sessions.Remove(sess.ID())

	if err := sess.Serve(); err != nil {
		log.WithError(err).WithField("session_id", sess.ID().String()).Warn("Session ended with error")
	}
}

// acceptBind is the session acceptance side of the handshake. It is bounded
// by the bind timeout and is not cut short when the connection drops.
func (s *Server) acceptBind(sess *session.ServerSession) {
	entry := log.WithField("session_id", sess.ID().String())

	req, err := sess.WaitForBind(s.cfg.BindTimeout)
	if err != nil {
		entry.WithError(err).WithField("bind_timeout", s.cfg.BindTimeout).Warn("No bind request received")
		sess.Close()
		return
	}

	bind := req.Bind()
	entry = entry.WithField("system_id", bind.SystemID)

	if status := s.auth.Authenticate(bind); status != pdu.StatusOK {
		if err := req.Reject(status); err != nil {
			entry.WithError(err).Warn("Failed to send bind rejection")
		}
		sess.Close()
		return
	}

	if err := req.Accept(s.cfg.SystemID); err != nil {
		entry.WithError(err).Warn("Failed to accept bind")
		sess.Close()
	}
}
