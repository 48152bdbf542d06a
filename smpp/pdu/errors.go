// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdu

import "fmt"

// StatusError is a decode failure that maps onto an SMPP command_status, so
// the receiving session can answer it with a generic_nack or a negative
// response instead of dropping the connection.
type StatusError struct {
	Header Header
	Status CommandStatus
	Reason string
	// Framing is set when the header itself was unusable and the stream is no
	// longer aligned on a PDU boundary.
	Framing bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pdu: %s: %s", e.Status, e.Reason)
}

// Recoverable reports whether the reader can continue with the next PDU.
func (e *StatusError) Recoverable() bool {
	return !e.Framing
}

func statusErrorf(h Header, status CommandStatus, format string, args ...interface{}) *StatusError {
	return &StatusError{Header: h, Status: status, Reason: fmt.Sprintf(format, args...)}
}
