// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statejson

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
)

// StateDescription ...
type StateDescription struct {
	Name         string `json:"name"`
	LastModified int64  `json:"lastModified"`
}

// SessionDescription describes one SMPP session for debugging purposes
type SessionDescription struct {
	ID         string           `json:"id"`
	RemoteAddr string           `json:"remoteAddr"`
	State      StateDescription `json:"state"`
	BindGate   string           `json:"bindGate"`
	BindType   string           `json:"bindType,omitempty"`
	SystemID   string           `json:"systemId,omitempty"`
	CreatedAt  int64            `json:"createdAt"`
}

// SessionsDescription lists every live session
type SessionsDescription struct {
	Sessions []SessionDescription `json:"sessions"`
}

func (s *SessionsDescription) AsJSON() []byte {
	bytes, err := json.Marshal(s)
	if err != nil {
		log.Panicf("Failed to marshall session states: %s", err)
	}
	return bytes
}
