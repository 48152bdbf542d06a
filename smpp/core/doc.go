// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

/*

Package core holds the synchronization and state primitives of an SMPP server
session.

A session runs two goroutines that meet exactly once during the handshake:

1. The read loop decodes a bind_transmitter, bind_receiver or bind_transceiver
   off the wire and calls BindGate.Deliver.
2. The acceptance logic calls BindGate.AwaitRequest with the bind timeout and
   decides whether to accept or reject what it receives.

A BindGate is created per connection and discarded with it. It moves a single
BindRequest from (1) to (2), rejects a second delivery and a second wait, and
bounds the wait with a deadline:

	Empty --Deliver--> Delivered --AwaitRequest--> Handed
	Empty --AwaitRequest--> Awaiting --Deliver--> Handed
	                        Awaiting --deadline--> TimedOut --Deliver--> Abandoned

A bind that lands in Abandoned is kept but never observed.

SessionState tracks the session after the handshake:

	Open --Bind--> BoundTX | BoundRX | BoundTRX --Unbind--> Unbound
	(any) --Close--> Closed

*/
package core
