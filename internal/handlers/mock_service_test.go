package handlers

import (
	"context"
	"net/http"
	"time"

	"coffeebot/internal/dispatcher"
	"coffeebot/internal/models"
	"coffeebot/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type actionCall struct {
	action dispatcher.Action
	arg    string
}

type mockActions struct {
	outcomes map[dispatcher.Action]dispatcher.Outcome
	calls    []actionCall
}

func (m *mockActions) Do(ctx context.Context, action dispatcher.Action, arg string) dispatcher.Outcome {
	m.calls = append(m.calls, actionCall{action: action, arg: arg})
	if out, ok := m.outcomes[action]; ok {
		return out
	}
	return dispatcher.Outcome{Code: dispatcher.CodeAccepted}
}

type mockAuth struct {
	disabled   bool
	token      string
	signInErr  error
	subject    string
	parseErr   error
	lastSecret string
	lastParsed string
}

func (m *mockAuth) Enabled() bool { return !m.disabled }
func (m *mockAuth) IssueToken(subject string) (string, error) {
	return m.token, m.signInErr
}
func (m *mockAuth) SignIn(subject, secret string) (string, error) {
	m.lastSecret = secret
	return m.token, m.signInErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParsed = token
	return m.subject, m.parseErr
}

type mockCoffee struct {
	resetErr    error
	resetCalls  int
	resetSource models.Source
}

func (m *mockCoffee) Brew(ctx context.Context, src models.Source, announceStart bool) (models.BrewResult, error) {
	return models.BrewResult{}, nil
}
func (m *mockCoffee) MarkFresh(ctx context.Context, when string, src models.Source) (time.Time, error) {
	return time.Time{}, nil
}
func (m *mockCoffee) Reset(ctx context.Context, src models.Source) error {
	m.resetCalls++
	m.resetSource = src
	return m.resetErr
}
func (m *mockCoffee) Query(ctx context.Context) (models.BrewState, error) {
	return models.BrewState{}, nil
}
func (m *mockCoffee) Restore(ctx context.Context) error { return nil }

type mockSettings struct {
	text    string
	delay   time.Duration
	err     error
	setErr  error
	lastSet string
}

func (m *mockSettings) BrewDelay(ctx context.Context) (string, time.Duration, error) {
	return m.text, m.delay, m.err
}
func (m *mockSettings) SetBrewDelay(ctx context.Context, text string) (time.Duration, error) {
	m.lastSet = text
	return m.delay, m.setErr
}

type mockMonitoring struct {
	state models.BrewState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.BrewState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.CoffeeEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.CoffeeEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, actions Actions, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	if s.Authorization == nil {
		s.Authorization = &mockAuth{}
	}
	h := NewHandler(s, actions, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withHeader(req *http.Request, hdr http.Header) *http.Request {
	for k, vv := range hdr {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
