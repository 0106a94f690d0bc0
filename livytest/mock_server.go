// Package livytest provides an in-memory mock Livy server for integration
// testing. The mock implements the session, statement and batch resources
// with simplified lifecycles: entities advance one lifecycle step per state
// poll, so a test can drive a full create/poll/complete/kill flow without a
// Spark cluster.
package livytest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	livy "github.com/kjmrknsn/livy-go"
)

// Batch lifecycle states reported by the mock. The live service reports
// batch states as free-form strings, so the mock does too.
const (
	BatchStateStarting = "starting"
	BatchStateRunning  = "running"
	BatchStateSuccess  = "success"
	BatchStateDead     = "dead"
)

type mockStatement struct {
	id     int64
	code   string
	state  livy.StatementState
	count  int64
	cancel bool
}

type mockSession struct {
	id         int64
	kind       livy.SessionKind
	proxyUser  *string
	name       *string
	state      livy.SessionState
	log        []string
	statements []*mockStatement
}

type mockBatch struct {
	id    int64
	state string
	log   []string
}

// MockLivyServer simulates a Livy server for integration testing.
type MockLivyServer struct {
	server *httptest.Server

	mu            sync.RWMutex
	sessions      map[int64]*mockSession
	batches       map[int64]*mockBatch
	nextSessionID int64
	nextBatchID   int64
	nextStmtID    int64
}

// NewMockLivyServer initializes a new mock server using the standard library.
func NewMockLivyServer() *MockLivyServer {
	mock := &MockLivyServer{
		sessions: make(map[int64]*mockSession),
		batches:  make(map[int64]*mockBatch),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /sessions", mock.handleListSessions)
	mux.HandleFunc("POST /sessions", mock.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", mock.handleGetSession)
	mux.HandleFunc("GET /sessions/{id}/state", mock.handleGetSessionState)
	mux.HandleFunc("DELETE /sessions/{id}", mock.handleDeleteSession)
	mux.HandleFunc("GET /sessions/{id}/log", mock.handleGetSessionLog)
	mux.HandleFunc("GET /sessions/{id}/statements", mock.handleListStatements)
	mux.HandleFunc("POST /sessions/{id}/statements", mock.handleRunStatement)
	mux.HandleFunc("GET /sessions/{id}/statements/{sid}", mock.handleGetStatement)
	mux.HandleFunc("POST /sessions/{id}/statements/{sid}/cancel", mock.handleCancelStatement)

	mux.HandleFunc("GET /batches", mock.handleListBatches)
	mux.HandleFunc("POST /batches", mock.handleCreateBatch)
	mux.HandleFunc("GET /batches/{id}", mock.handleGetBatch)
	mux.HandleFunc("GET /batches/{id}/state", mock.handleGetBatchState)
	mux.HandleFunc("DELETE /batches/{id}", mock.handleKillBatch)
	mux.HandleFunc("GET /batches/{id}/log", mock.handleGetBatchLog)

	mock.server = httptest.NewServer(mux)

	return mock
}

// URL returns the base URL of the mock server.
func (m *MockLivyServer) URL() string { return m.server.URL }

// Close shuts down the mock server.
func (m *MockLivyServer) Close() { m.server.Close() }

// --- Protocol helpers ---

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// requireRequestedBy enforces the CSRF guard the live server applies to
// modifying requests.
func requireRequestedBy(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get(livy.RequestedByHeader) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"msg": "Missing Required Header for CSRF protection.",
		})
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

// window applies from/size query parameters to a slice length and returns
// the resulting bounds.
func window(r *http.Request, total int) (int, int) {
	start, end := 0, total
	if v, err := strconv.Atoi(r.URL.Query().Get("from")); err == nil && v > 0 {
		start = v
	}
	if start > total {
		start = total
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v >= 0 && start+v < end {
		end = start + v
	}
	return start, end
}

// --- Rendering ---

func renderSession(s *mockSession) livy.Session {
	kind := s.kind
	state := s.state
	return livy.Session{
		Id:        livy.Ptr(s.id),
		AppId:     livy.Ptr(fmt.Sprintf("application_mock_%04d", s.id)),
		Owner:     s.name,
		ProxyUser: s.proxyUser,
		Kind:      &kind,
		Log:       s.log,
		State:     &state,
		AppInfo: map[string]*string{
			"driverLogUrl": nil,
			"sparkUiUrl":   livy.Ptr(fmt.Sprintf("http://spark-ui.mock/%d", s.id)),
		},
	}
}

func renderStatement(st *mockStatement) livy.Statement {
	state := st.state
	stmt := livy.Statement{
		Id:    livy.Ptr(st.id),
		State: &state,
	}
	if st.state == livy.StatementAvailable {
		stmt.Output = &livy.StatementOutput{
			Status:         livy.Ptr("ok"),
			ExecutionCount: livy.Ptr(st.count),
			Data: map[string]*string{
				"text/plain": livy.Ptr("res: " + st.code),
			},
		}
	}
	return stmt
}

func renderBatch(b *mockBatch) livy.Batch {
	return livy.Batch{
		Id:    livy.Ptr(b.id),
		AppId: livy.Ptr(fmt.Sprintf("application_mock_%04d", b.id)),
		AppInfo: map[string]*string{
			"driverLogUrl": nil,
		},
		Log:   b.log,
		State: livy.Ptr(b.state),
	}
}

// --- Lifecycle advancement ---

// advanceSession moves a session one lifecycle step per state poll.
func advanceSession(s *mockSession) {
	switch s.state {
	case livy.SessionStarting:
		s.state = livy.SessionIdle
		s.log = append(s.log, "interpreter ready")
	case livy.SessionShuttingDown:
		s.state = livy.SessionDead
	}
}

// advanceStatement moves a statement one lifecycle step per poll.
func advanceStatement(st *mockStatement) {
	switch st.state {
	case livy.StatementWaiting:
		if st.cancel {
			st.state = livy.StatementCancelling
			return
		}
		st.state = livy.StatementRunning
	case livy.StatementRunning:
		if st.cancel {
			st.state = livy.StatementCancelling
			return
		}
		st.state = livy.StatementAvailable
	case livy.StatementCancelling:
		st.state = livy.StatementCancelled
	}
}

// advanceBatch moves a batch one lifecycle step per state poll.
func advanceBatch(b *mockBatch) {
	switch b.state {
	case BatchStateStarting:
		b.state = BatchStateRunning
		b.log = append(b.log, "submitted to cluster")
	case BatchStateRunning:
		b.state = BatchStateSuccess
		b.log = append(b.log, "finished")
	}
}

// --- Session handlers ---

func (m *MockLivyServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	all := make([]livy.Session, 0, len(m.sessions))
	for id := int64(0); id < m.nextSessionID; id++ {
		if s, ok := m.sessions[id]; ok {
			all = append(all, renderSession(s))
		}
	}
	m.mu.RUnlock()

	start, end := window(r, len(all))
	writeJSON(w, http.StatusOK, livy.Sessions{
		From:     livy.Ptr(int64(start)),
		Total:    livy.Ptr(int64(len(all))),
		Sessions: all[start:end],
	})
}

func (m *MockLivyServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}

	var req livy.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "malformed session spec"})
		return
	}

	m.mu.Lock()
	s := &mockSession{
		id:        m.nextSessionID,
		kind:      req.Kind,
		proxyUser: req.ProxyUser,
		name:      req.Name,
		state:     livy.SessionStarting,
		log:       []string{"starting session"},
	}
	m.nextSessionID++
	m.sessions[s.id] = s
	rendered := renderSession(s)
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, rendered)
}

func (m *MockLivyServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	advanceSession(s)
	writeJSON(w, http.StatusOK, renderSession(s))
}

func (m *MockLivyServer) handleGetSessionState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	advanceSession(s)
	state := s.state
	writeJSON(w, http.StatusOK, livy.SessionStateInfo{
		Id:    livy.Ptr(s.id),
		State: &state,
	})
}

func (m *MockLivyServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	delete(m.sessions, id)
	writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
}

func (m *MockLivyServer) handleGetSessionLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	start, end := window(r, len(s.log))
	writeJSON(w, http.StatusOK, livy.SessionLog{
		Id:    livy.Ptr(s.id),
		From:  livy.Ptr(int64(start)),
		Total: livy.Ptr(int64(len(s.log))),
		Log:   s.log[start:end],
	})
}

// --- Statement handlers ---

func (m *MockLivyServer) handleListStatements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	statements := make([]livy.Statement, 0, len(s.statements))
	for _, st := range s.statements {
		statements = append(statements, renderStatement(st))
	}
	writeJSON(w, http.StatusOK, livy.Statements{
		TotalStatements: livy.Ptr(int64(len(statements))),
		Statements:      statements,
	})
}

func (m *MockLivyServer) handleRunStatement(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid session id"})
		return
	}

	var req livy.RunStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "malformed statement"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	st := &mockStatement{
		id:    m.nextStmtID,
		code:  req.Code,
		state: livy.StatementWaiting,
		count: int64(len(s.statements)),
	}
	m.nextStmtID++
	s.statements = append(s.statements, st)
	s.state = livy.SessionBusy
	writeJSON(w, http.StatusOK, renderStatement(st))
}

func (m *MockLivyServer) findStatement(s *mockSession, sid int64) *mockStatement {
	for _, st := range s.statements {
		if st.id == sid {
			return st
		}
	}
	return nil
}

func (m *MockLivyServer) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	sid, ok2 := pathID(r, "sid")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	st := m.findStatement(s, sid)
	if st == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Statement '%d' not found.", sid)})
		return
	}
	advanceStatement(st)
	if st.state == livy.StatementAvailable || st.state == livy.StatementCancelled {
		s.state = livy.SessionIdle
	}
	writeJSON(w, http.StatusOK, renderStatement(st))
}

func (m *MockLivyServer) handleCancelStatement(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	sid, ok2 := pathID(r, "sid")
	if !ok || !ok2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Session '%d' not found.", id)})
		return
	}
	st := m.findStatement(s, sid)
	if st == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Statement '%d' not found.", sid)})
		return
	}
	st.cancel = true
	writeJSON(w, http.StatusOK, map[string]string{"msg": "canceled"})
}

// --- Batch handlers ---

func (m *MockLivyServer) handleListBatches(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	all := make([]livy.Batch, 0, len(m.batches))
	for id := int64(0); id < m.nextBatchID; id++ {
		if b, ok := m.batches[id]; ok {
			all = append(all, renderBatch(b))
		}
	}
	m.mu.RUnlock()

	start, end := window(r, len(all))
	writeJSON(w, http.StatusOK, livy.Batches{
		From:     livy.Ptr(int64(start)),
		Total:    livy.Ptr(int64(len(all))),
		Sessions: all[start:end],
	})
}

func (m *MockLivyServer) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}

	var req livy.CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "malformed batch spec"})
		return
	}

	m.mu.Lock()
	b := &mockBatch{
		id:    m.nextBatchID,
		state: BatchStateStarting,
		log:   []string{"uploading " + req.File},
	}
	m.nextBatchID++
	m.batches[b.id] = b
	rendered := renderBatch(b)
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, rendered)
}

func (m *MockLivyServer) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid batch id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Batch '%d' not found.", id)})
		return
	}
	advanceBatch(b)
	writeJSON(w, http.StatusOK, renderBatch(b))
}

func (m *MockLivyServer) handleGetBatchState(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid batch id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Batch '%d' not found.", id)})
		return
	}
	advanceBatch(b)
	writeJSON(w, http.StatusOK, livy.BatchStateInfo{
		Id:    livy.Ptr(b.id),
		State: livy.Ptr(b.state),
	})
}

func (m *MockLivyServer) handleKillBatch(w http.ResponseWriter, r *http.Request) {
	if !requireRequestedBy(w, r) {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid batch id"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Batch '%d' not found.", id)})
		return
	}
	delete(m.batches, id)
	writeJSON(w, http.StatusOK, map[string]string{"msg": "deleted"})
}

func (m *MockLivyServer) handleGetBatchLog(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "invalid batch id"})
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"msg": fmt.Sprintf("Batch '%d' not found.", id)})
		return
	}
	start, end := window(r, len(b.log))
	writeJSON(w, http.StatusOK, livy.BatchLog{
		Id:    livy.Ptr(b.id),
		From:  livy.Ptr(int64(start)),
		Total: livy.Ptr(int64(len(b.log))),
		Log:   b.log[start:end],
	})
}
