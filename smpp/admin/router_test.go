// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.smppd.dev/smpp/core/statejson"
)

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Describe() statejson.SessionsDescription {
	return m.Called().Get(0).(statejson.SessionsDescription)
}

func (m *mockRegistry) DescribeByID(id uuid.UUID) (statejson.SessionDescription, bool) {
	args := m.Called(id)
	return args.Get(0).(statejson.SessionDescription), args.Bool(1)
}

func (m *mockRegistry) CloseByID(id uuid.UUID) bool {
	return m.Called(id).Bool(0)
}

func makeTestRequest(t *testing.T, router http.Handler, method, target string) *httptest.ResponseRecorder {
	responseRecorder := httptest.NewRecorder()
	router.ServeHTTP(responseRecorder, httptest.NewRequest(method, target, nil))
	t.Logf("test(%s %s) = %v", method, target, responseRecorder.Code)
	return responseRecorder
}

func assertResponseErrorType(t *testing.T, expectedErrorType string, response *httptest.ResponseRecorder) {
	errResp := ErrorResponse{}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &errResp))
	assert.Equal(t, expectedErrorType, errResp.ErrorType)
}

func TestPing(t *testing.T) {
	router := NewRouter(&mockRegistry{})
	resp := makeTestRequest(t, router, "GET", "/ping")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "pong", resp.Body.String())
}

func TestListSessions(t *testing.T) {
	registry := &mockRegistry{}
	registry.On("Describe").Return(statejson.SessionsDescription{
		Sessions: []statejson.SessionDescription{
			{ID: "a", State: statejson.StateDescription{Name: "BoundTX"}, BindGate: "Handed"},
		},
	})

	resp := makeTestRequest(t, NewRouter(registry), "GET", "/sessions")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Type"), "application/json")

	var desc statejson.SessionsDescription
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &desc))
	require.Len(t, desc.Sessions, 1)
	assert.Equal(t, "BoundTX", desc.Sessions[0].State.Name)
	assert.Equal(t, "Handed", desc.Sessions[0].BindGate)
}

func TestListSessionsEmpty(t *testing.T) {
	registry := &mockRegistry{}
	registry.On("Describe").Return(statejson.SessionsDescription{Sessions: []statejson.SessionDescription{}})

	resp := makeTestRequest(t, NewRouter(registry), "GET", "/sessions")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"sessions":[]}`, resp.Body.String())
}

func TestGetSession(t *testing.T) {
	id := uuid.New()
	registry := &mockRegistry{}
	registry.On("DescribeByID", id).Return(statejson.SessionDescription{ID: id.String(), SystemID: "esme"}, true)

	resp := makeTestRequest(t, NewRouter(registry), "GET", "/sessions/"+id.String())
	assert.Equal(t, http.StatusOK, resp.Code)

	var desc statejson.SessionDescription
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &desc))
	assert.Equal(t, id.String(), desc.ID)
	assert.Equal(t, "esme", desc.SystemID)
	registry.AssertExpectations(t)
}

func TestGetUnknownSession(t *testing.T) {
	id := uuid.New()
	registry := &mockRegistry{}
	registry.On("DescribeByID", id).Return(statejson.SessionDescription{}, false)

	resp := makeTestRequest(t, NewRouter(registry), "GET", "/sessions/"+id.String())
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assertResponseErrorType(t, errorTypeSessionNotFound, resp)
}

func TestInvalidSessionID(t *testing.T) {
	registry := &mockRegistry{}
	router := NewRouter(registry)

	resp := makeTestRequest(t, router, "GET", "/sessions/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assertResponseErrorType(t, errorTypeInvalidSessionID, resp)

	resp = makeTestRequest(t, router, "DELETE", "/sessions/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	registry.AssertNotCalled(t, "DescribeByID", mock.Anything)
	registry.AssertNotCalled(t, "CloseByID", mock.Anything)
}

func TestCloseSession(t *testing.T) {
	id, unknown := uuid.New(), uuid.New()
	registry := &mockRegistry{}
	registry.On("CloseByID", id).Return(true).Once()
	registry.On("CloseByID", unknown).Return(false).Once()
	router := NewRouter(registry)

	resp := makeTestRequest(t, router, "DELETE", "/sessions/"+id.String())
	assert.Equal(t, http.StatusAccepted, resp.Code)

	resp = makeTestRequest(t, router, "DELETE", "/sessions/"+unknown.String())
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assertResponseErrorType(t, errorTypeSessionNotFound, resp)

	registry.AssertExpectations(t)
}

func TestMethodNotAllowed(t *testing.T) {
	resp := makeTestRequest(t, NewRouter(&mockRegistry{}), "POST", "/sessions")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}
