// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"crypto/subtle"

	"go.smppd.dev/smpp/config"
	"go.smppd.dev/smpp/pdu"
)

// Authenticator decides whether a bind is accepted. StatusOK accepts; any
// other status is sent back in the negative bind_resp.
type Authenticator interface {
	Authenticate(bind pdu.Bind) pdu.CommandStatus
}

// CredentialsAuthenticator accepts binds whose system_id and password match
// a configured credential.
type CredentialsAuthenticator struct {
	passwords map[string]string
}

// NewCredentialsAuthenticator indexes creds by system_id.
func NewCredentialsAuthenticator(creds []config.Credential) *CredentialsAuthenticator {
	passwords := make(map[string]string, len(creds))
	for _, c := range creds {
		passwords[c.SystemID] = c.Password
	}
	return &CredentialsAuthenticator{passwords: passwords}
}

func (a *CredentialsAuthenticator) Authenticate(bind pdu.Bind) pdu.CommandStatus {
	password, ok := a.passwords[bind.SystemID]
	if !ok {
		return pdu.StatusInvalidSystemID
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(bind.Password)) != 1 {
		return pdu.StatusInvalidPassword
	}
	return pdu.StatusOK
}
