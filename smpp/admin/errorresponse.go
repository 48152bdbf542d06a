// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"net/http"

	"github.com/go-chi/render"
)

const (
	errorTypeInvalidSessionID = "InvalidSessionID"
	errorTypeSessionNotFound  = "SessionNotFound"
)

// ErrorResponse is the body of every non-2xx admin response
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

func renderError(writer http.ResponseWriter, request *http.Request, status int, errorType, message string) {
	render.Status(request, status)
	render.JSON(writer, request, &ErrorResponse{
		ErrorMessage: message,
		ErrorType:    errorType,
	})
}
