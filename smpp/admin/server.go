// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"errors"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// Server is the HTTP admin API server
type Server struct {
	address  string
	server   *http.Server
	listener net.Listener
}

// NewServer creates an admin server for the given registry. As with the SMPP
// server, Listen and Serve are separate calls.
func NewServer(address string, registry Registry) *Server {
	return &Server{
		address: address,
		server:  &http.Server{Handler: NewRouter(registry)},
	}
}

// Listen on the configured address
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.listener = ln
	log.WithField("address", ln.Addr().String()).Info("Admin API listening")
	return nil
}

// Addr is the bound listener address; nil before Listen
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve requests and close on cancelation signals
func (s *Server) Serve(ctx context.Context) error {
	defer s.Close()

	errs := make(chan error, 1)
	go func() {
		errs <- s.server.Serve(s.listener)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close forcefully closes listeners & connections
func (s *Server) Close() error {
	err := s.server.Close()
	if err == nil {
		log.Info("Admin API closed")
	}
	return err
}
