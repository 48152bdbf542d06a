// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"go.smppd.dev/smpp/core"
	"go.smppd.dev/smpp/pdu"
)

// ErrReadTimeout is returned by Serve when the peer stays silent longer than
// Options.ReadTimeout.
var ErrReadTimeout = errors.New("session: read timeout")

// ErrAlreadyAnswered is returned when Accept or Reject is called twice.
var ErrAlreadyAnswered = errors.New("session: bind request already answered")

// BindRequest is a bind received on a ServerSession that is waiting for the
// acceptance logic to answer it.
type BindRequest struct {
	session  *ServerSession
	request  *core.BindRequest
	answered bool
}

// Bind returns the received bind command.
func (r *BindRequest) Bind() pdu.Bind {
	return r.request.Bind()
}

// Accept binds the session and replies with a positive bind_resp carrying
// systemID.
func (r *BindRequest) Accept(systemID string) error {
	return r.accept(systemID, 0)
}

// AcceptWithInterfaceVersion is Accept that also advertises the SMSC
// interface version in the sc_interface_version optional parameter.
func (r *BindRequest) AcceptWithInterfaceVersion(systemID string, interfaceVersion byte) error {
	return r.accept(systemID, interfaceVersion)
}

// Reject replies with a negative bind_resp. The session stays open and
// unbound; closing it is up to the caller.
func (r *BindRequest) Reject(status pdu.CommandStatus) error {
	if r.answered {
		return ErrAlreadyAnswered
	}
	r.answered = true

	if status == pdu.StatusOK {
		status = pdu.StatusBindFailed
	}

	bind := r.request.Bind()
	r.session.log.WithFields(log.Fields{
		"system_id":      bind.SystemID,
		"command_status": status.String(),
	}).Info("Bind rejected")
	return r.request.ResponseHandler().SendNegativeResponse(bind.ID.Response(), status, bind.Sequence)
}

func (r *BindRequest) accept(systemID string, interfaceVersion byte) error {
	if r.answered {
		return ErrAlreadyAnswered
	}
	r.answered = true

	bind := r.request.Bind()
	if err := r.session.state.Bind(bind.ID); err != nil {
		return fmt.Errorf("accept %s in state %s: %w", bind.ID, r.session.state.Name(), err)
	}
	r.session.bound(bind)

	r.session.log.WithFields(log.Fields{
		"system_id": bind.SystemID,
		"bind_type": bind.ID.String(),
	}).Info("Bind accepted")

	return r.request.ResponseHandler().SendBindResp(pdu.BindResp{
		Header:             pdu.Header{ID: bind.ID.Response(), Status: pdu.StatusOK, Sequence: bind.Sequence},
		SystemID:           systemID,
		SCInterfaceVersion: interfaceVersion,
	})
}
