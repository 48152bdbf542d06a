// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"go.smppd.dev/smpp/pdu"
)

// responseHandler writes bind replies on the session's connection. It is the
// capability carried through the bind gate.
type responseHandler struct {
	session *ServerSession
}

func (h *responseHandler) SendBindResp(resp pdu.BindResp) error {
	return h.session.writePDU(resp)
}

func (h *responseHandler) SendNegativeResponse(commandID pdu.CommandID, status pdu.CommandStatus, sequence uint32) error {
	return h.session.writePDU(pdu.Empty{Header: pdu.Header{ID: commandID, Status: status, Sequence: sequence}})
}
