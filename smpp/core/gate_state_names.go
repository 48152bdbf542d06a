// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

// String values of possible bind gate states
const (
	BindGateEmptyStateName     = "Empty"
	BindGateAwaitingStateName  = "Awaiting"
	BindGateDeliveredStateName = "Delivered"
	BindGateHandedStateName    = "Handed"
	BindGateTimedOutStateName  = "TimedOut"
	// BindGateTimedOutState -> BindGateAbandonedState on a late delivery
	BindGateAbandonedStateName = "Abandoned"
)

var gateStateNames = map[gateState]string{
	gateEmpty:     BindGateEmptyStateName,
	gateAwaiting:  BindGateAwaitingStateName,
	gateDelivered: BindGateDeliveredStateName,
	gateHanded:    BindGateHandedStateName,
	gateTimedOut:  BindGateTimedOutStateName,
	gateAbandoned: BindGateAbandonedStateName,
}
