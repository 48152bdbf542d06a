// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"go.smppd.dev/smpp/pdu"
)

type nopResponseHandler struct {
	name string
}

func (h *nopResponseHandler) SendBindResp(pdu.BindResp) error {
	return nil
}

func (h *nopResponseHandler) SendNegativeResponse(pdu.CommandID, pdu.CommandStatus, uint32) error {
	return nil
}

func testBind(systemID string, seq uint32) pdu.Bind {
	return pdu.Bind{
		Header:           pdu.Header{ID: pdu.BindTransceiver, Sequence: seq},
		SystemID:         systemID,
		Password:         "secret",
		InterfaceVersion: 0x34,
	}
}

func TestDeliverThenAwait(t *testing.T) {
	h := &nopResponseHandler{name: "H"}
	g := NewBindGate(h)

	require.NoError(t, g.Deliver(testBind("cmd1", 1)))
	assert.Equal(t, BindGateDeliveredStateName, g.State())

	start := time.Now()
	req, err := g.AwaitRequest(5 * time.Second)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "cmd1", req.Bind().SystemID)
	assert.Same(t, h, req.ResponseHandler())
	assert.Less(t, int64(elapsed), int64(100*time.Millisecond))
	assert.Equal(t, BindGateHandedStateName, g.State())
}

func TestAwaitTimesOut(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})

	start := time.Now()
	req, err := g.AwaitRequest(200 * time.Millisecond)
	elapsed := time.Since(start)

	assert.Nil(t, req)
	assert.Equal(t, ErrBindTimeout, err)
	assert.GreaterOrEqual(t, int64(elapsed), int64(200*time.Millisecond))
	assert.Less(t, int64(elapsed), int64(time.Second))
	assert.Equal(t, BindGateTimedOutStateName, g.State())
}

func TestDeliverWakesWaiter(t *testing.T) {
	h := &nopResponseHandler{name: "H"}
	g := NewBindGate(h)

	var errg errgroup.Group
	var req *BindRequest
	start := time.Now()
	errg.Go(func() error {
		var err error
		req, err = g.AwaitRequest(time.Second)
		return err
	})

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, g.Deliver(testBind("cmd2", 2)))

	require.NoError(t, errg.Wait())
	elapsed := time.Since(start)

	assert.Equal(t, "cmd2", req.Bind().SystemID)
	assert.Equal(t, uint32(2), req.Bind().Sequence)
	assert.Same(t, h, req.ResponseHandler())
	assert.Less(t, int64(elapsed), int64(500*time.Millisecond))
}

func TestAwaitTwiceAfterSuccess(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})
	require.NoError(t, g.Deliver(testBind("esme", 1)))

	_, err := g.AwaitRequest(time.Second)
	require.NoError(t, err)

	start := time.Now()
	req, err := g.AwaitRequest(time.Second)
	assert.Nil(t, req)
	assert.Equal(t, ErrAlreadyWaiting, err)
	assert.Less(t, int64(time.Since(start)), int64(100*time.Millisecond))
}

func TestAwaitTwiceAfterTimeout(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})

	_, err := g.AwaitRequest(10 * time.Millisecond)
	require.Equal(t, ErrBindTimeout, err)

	start := time.Now()
	_, err = g.AwaitRequest(time.Second)
	assert.Equal(t, ErrAlreadyWaiting, err)
	assert.Less(t, int64(time.Since(start)), int64(100*time.Millisecond))
}

func TestAwaitWhileAnotherWaits(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})

	var errg errgroup.Group
	errg.Go(func() error {
		_, err := g.AwaitRequest(time.Second)
		return err
	})

	require.Eventually(t, func() bool {
		return g.State() == BindGateAwaitingStateName
	}, time.Second, time.Millisecond)

	_, err := g.AwaitRequest(time.Second)
	assert.Equal(t, ErrAlreadyWaiting, err)

	require.NoError(t, g.Deliver(testBind("esme", 1)))
	assert.NoError(t, errg.Wait())
}

func TestDeliverTwiceKeepsFirst(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})

	require.NoError(t, g.Deliver(testBind("first", 1)))
	assert.Equal(t, ErrAlreadyDelivered, g.Deliver(testBind("second", 2)))

	req, err := g.AwaitRequest(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "first", req.Bind().SystemID)
	assert.Equal(t, ErrAlreadyDelivered, g.Deliver(testBind("third", 3)))
}

func TestConcurrentDeliveries(t *testing.T) {
	const deliverers = 16
	g := NewBindGate(&nopResponseHandler{})

	var waiter errgroup.Group
	var req *BindRequest
	waiter.Go(func() error {
		var err error
		req, err = g.AwaitRequest(5 * time.Second)
		return err
	})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		winners  []string
		rejected int
		start    = make(chan struct{})
	)
	for i := 0; i < deliverers; i++ {
		systemID := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := g.Deliver(testBind(systemID, 1))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, systemID)
			} else if errors.Is(err, ErrAlreadyDelivered) {
				rejected++
			}
		}()
	}
	close(start)
	wg.Wait()

	require.NoError(t, waiter.Wait())
	require.Len(t, winners, 1)
	assert.Equal(t, deliverers-1, rejected)
	assert.Equal(t, winners[0], req.Bind().SystemID)
}

// A bind that arrives after the waiter gave up is accepted and kept, but
// nothing ever reads it.
func TestLateDeliveryIsAbandoned(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})

	_, err := g.AwaitRequest(10 * time.Millisecond)
	require.Equal(t, ErrBindTimeout, err)

	assert.NoError(t, g.Deliver(testBind("late", 1)))
	assert.Equal(t, BindGateAbandonedStateName, g.State())

	_, err = g.AwaitRequest(time.Second)
	assert.Equal(t, ErrAlreadyWaiting, err)
	assert.Equal(t, ErrAlreadyDelivered, g.Deliver(testBind("later", 2)))
}

func TestZeroTimeoutWithoutDelivery(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})
	_, err := g.AwaitRequest(0)
	assert.Equal(t, ErrBindTimeout, err)
}

func TestZeroTimeoutAfterDelivery(t *testing.T) {
	g := NewBindGate(&nopResponseHandler{})
	require.NoError(t, g.Deliver(testBind("esme", 1)))

	req, err := g.AwaitRequest(0)
	require.NoError(t, err)
	assert.Equal(t, "esme", req.Bind().SystemID)
}

func TestInitialState(t *testing.T) {
	assert.Equal(t, BindGateEmptyStateName, NewBindGate(nil).State())
}

func BenchmarkAwaitRequest(b *testing.B) {
	h := &nopResponseHandler{}
	bind := testBind("esme", 1)

	for n := 0; n < b.N; n++ {
		g := NewBindGate(h)
		go func() { _ = g.Deliver(bind) }()
		if _, err := g.AwaitRequest(time.Second); err != nil {
			panic(err)
		}
	}
}
