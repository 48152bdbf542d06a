// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"net/http"

	"github.com/go-chi/chi"
)

// NewRouter returns the admin API router
func NewRouter(registry Registry) http.Handler {
	router := chi.NewRouter()
	router.Use(AccessLogMiddleware())

	router.Get("/ping", (&pingHandler{}).ServeHTTP)
	router.Get("/sessions", (&sessionsHandler{registry: registry}).ServeHTTP)

	router.Route("/sessions/{sessionid}", func(r chi.Router) {
		r.Use(SessionIDValidator)
		r.Get("/", (&sessionHandler{registry: registry}).ServeHTTP)
		r.Delete("/", (&sessionCloseHandler{registry: registry}).ServeHTTP)
	})

	return router
}
