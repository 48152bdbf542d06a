// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"sync"
	"time"

	"go.smppd.dev/smpp/pdu"
)

// ErrAlreadyWaiting is returned by AwaitRequest on every call after the first.
var ErrAlreadyWaiting = errors.New("bind gate: AwaitRequest already invoked")

// ErrAlreadyDelivered is returned by Deliver on every call after the first.
var ErrAlreadyDelivered = errors.New("bind gate: bind request already delivered")

// ErrBindTimeout is returned by AwaitRequest when no bind arrived in time.
var ErrBindTimeout = errors.New("bind gate: timed out waiting for bind request")

// ResponseHandler replies to a received bind on behalf of the session that
// owns the gate. The gate carries it into the BindRequest and never calls it.
type ResponseHandler interface {
	SendBindResp(resp pdu.BindResp) error
	SendNegativeResponse(commandID pdu.CommandID, status pdu.CommandStatus, sequence uint32) error
}

// BindRequest pairs a decoded bind with the handler that must answer it.
type BindRequest struct {
	bind    pdu.Bind
	handler ResponseHandler
}

// Bind returns the bind command as it was delivered.
func (r *BindRequest) Bind() pdu.Bind {
	return r.bind
}

// ResponseHandler returns the handler the gate was created with.
func (r *BindRequest) ResponseHandler() ResponseHandler {
	return r.handler
}

// BindGate hands exactly one bind request from the transport read loop to
// exactly one waiter in the session acceptance logic.
type BindGate interface {
	AwaitRequest(timeout time.Duration) (*BindRequest, error)
	Deliver(bind pdu.Bind) error
	State() string
}

type gateState uint8

const (
	// no bind, no waiter
	gateEmpty gateState = iota
	// waiter is blocked, no bind yet
	gateAwaiting
	// bind stored, waiter not arrived yet
	gateDelivered
	// bind handed to the waiter
	gateHanded
	// waiter gave up, no bind
	gateTimedOut
	// bind arrived after the waiter gave up and will never be read
	gateAbandoned
)

type bindGateImpl struct {
	mu        sync.Mutex
	state     gateState
	request   *BindRequest
	delivered chan struct{}
	handler   ResponseHandler
}

// AwaitRequest blocks until a bind is delivered or timeout elapses, whichever
// comes first. There is no context parameter: cancellation does not
// end the wait, only delivery or the deadline does. A bind that is delivered
// while the deadline fires is still returned.
func (g *bindGateImpl) AwaitRequest(timeout time.Duration) (*BindRequest, error) {
	g.mu.Lock()
	switch g.state {
	case gateDelivered:
		g.state = gateHanded
		request := g.request
		g.mu.Unlock()
		return request, nil
	case gateEmpty:
		g.state = gateAwaiting
	default:
		g.mu.Unlock()
		return nil, ErrAlreadyWaiting
	}
	g.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-g.delivered:
	case <-timer.C:
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == gateHanded {
		return g.request, nil
	}

	g.state = gateTimedOut
	return nil, ErrBindTimeout
}

// Deliver stores bind and wakes the waiter, who may not have arrived yet.
func (g *bindGateImpl) Deliver(bind pdu.Bind) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case gateEmpty:
		g.state = gateDelivered
	case gateAwaiting:
		g.state = gateHanded
	case gateTimedOut:
		g.state = gateAbandoned
	default:
		return ErrAlreadyDelivered
	}

	g.request = &BindRequest{bind: bind, handler: g.handler}
	close(g.delivered)
	return nil
}

// State reports the gate's position in its lifecycle, for diagnostics.
func (g *bindGateImpl) State() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return gateStateNames[g.state]
}

// NewBindGate returns a gate for a single handshake attempt.
func NewBindGate(handler ResponseHandler) BindGate {
	return &bindGateImpl{
		state:     gateEmpty,
		delivered: make(chan struct{}),
		handler:   handler,
	}
}
