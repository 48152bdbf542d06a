// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"go.smppd.dev/smpp/core/statejson"
)

// Registry is the view of live sessions the admin API serves
type Registry interface {
	Describe() statejson.SessionsDescription
	DescribeByID(id uuid.UUID) (statejson.SessionDescription, bool)
	CloseByID(id uuid.UUID) bool
}

func withSessionID(r *http.Request, id uuid.UUID) context.Context {
	return context.WithValue(r.Context(), sessionIDKey{}, id)
}

func sessionID(r *http.Request) uuid.UUID {
	return r.Context().Value(sessionIDKey{}).(uuid.UUID)
}

type pingHandler struct{}

func (h *pingHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if _, err := writer.Write([]byte("pong")); err != nil {
		log.WithError(err).Warn("Failed to write 'pong' response")
	}
}

type sessionsHandler struct {
	registry Registry
}

func (h *sessionsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	desc := h.registry.Describe()
	render.JSON(writer, request, &desc)
}

type sessionHandler struct {
	registry Registry
}

func (h *sessionHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	id := sessionID(request)
	desc, found := h.registry.DescribeByID(id)
	if !found {
		renderError(writer, request, http.StatusNotFound, errorTypeSessionNotFound, "Unknown session: "+id.String())
		return
	}
	render.JSON(writer, request, &desc)
}

// sessionCloseHandler closes the connection; the session disappears from the
// registry once its read loop returns, hence 202.
type sessionCloseHandler struct {
	registry Registry
}

func (h *sessionCloseHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	id := sessionID(request)
	if !h.registry.CloseByID(id) {
		renderError(writer, request, http.StatusNotFound, errorTypeSessionNotFound, "Unknown session: "+id.String())
		return
	}
	log.WithField("session_id", id.String()).Info("Session closed through admin API")
	writer.WriteHeader(http.StatusAccepted)
}
