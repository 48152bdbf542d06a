// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type sessionIDKey struct{}

// AccessLogMiddleware logs every admin request at debug level
func AccessLogMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Debug("Admin API request - ", r.Method, " ", r.URL)
			next.ServeHTTP(w, r)
		})
	}
}

// SessionIDValidator rejects requests whose {sessionid} is not a UUID and
// stores the parsed ID in the request context.
func SessionIDValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "sessionid")
		id, err := uuid.Parse(raw)
		if err != nil {
			log.WithField("session_id", raw).Debug("Invalid session ID")
			renderError(w, r, http.StatusBadRequest, errorTypeInvalidSessionID, "Invalid session ID: "+raw)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSessionID(r, id)))
	})
}
