package livy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// Session represents an interactive session as reported by the server.
// Every field is optional; the service may omit any of them.
type Session struct {
	Id        *int64             `json:"id,omitempty"`
	AppId     *string            `json:"appId,omitempty"`
	Owner     *string            `json:"owner,omitempty"`
	ProxyUser *string            `json:"proxyUser,omitempty"`
	Kind      *SessionKind       `json:"kind,omitempty"`
	Log       []string           `json:"log,omitempty"`
	State     *SessionState      `json:"state,omitempty"`
	AppInfo   map[string]*string `json:"appInfo,omitempty"`
}

// Sessions is a paged collection of sessions.
type Sessions struct {
	From     *int64    `json:"from,omitempty"`
	Total    *int64    `json:"total,omitempty"`
	Sessions []Session `json:"sessions,omitempty"`
}

// SessionStateInfo is the reduced session view returned by the state
// endpoint.
type SessionStateInfo struct {
	Id    *int64        `json:"id,omitempty"`
	State *SessionState `json:"state,omitempty"`
}

// SessionLog is a window of a session's log lines.
type SessionLog struct {
	Id    *int64   `json:"id,omitempty"`
	From  *int64   `json:"from,omitempty"`
	Total *int64   `json:"total,omitempty"`
	Log   []string `json:"log,omitempty"`
}

// DeleteResult is the acknowledgement returned by kill/delete calls.
type DeleteResult struct {
	Msg *string `json:"msg,omitempty"`
}

// CreateSessionRequest describes a new interactive session. Only Kind is
// required; absent optional fields are omitted from the JSON body entirely
// so the server's own defaulting applies.
type CreateSessionRequest struct {
	Kind                     SessionKind       `json:"kind"`
	ProxyUser                *string           `json:"proxyUser,omitempty"`
	Jars                     []string          `json:"jars,omitempty"`
	PyFiles                  []string          `json:"pyFiles,omitempty"`
	Files                    []string          `json:"files,omitempty"`
	DriverMemory             *string           `json:"driverMemory,omitempty"`
	DriverCores              *int64            `json:"driverCores,omitempty"`
	ExecutorMemory           *string           `json:"executorMemory,omitempty"`
	ExecutorCores            *int64            `json:"executorCores,omitempty"`
	NumExecutors             *int64            `json:"numExecutors,omitempty"`
	Archives                 []string          `json:"archives,omitempty"`
	Queue                    *string           `json:"queue,omitempty"`
	Name                     *string           `json:"name,omitempty"`
	Conf                     map[string]string `json:"conf,omitempty"`
	HeartbeatTimeoutInSecond *int64            `json:"heartbeatTimeoutInSecond,omitempty"`
}

// SetHeartbeatTimeout fills HeartbeatTimeoutInSecond from a human-readable
// duration such as "90s" or "10m". Fractions of a second are truncated.
func (r *CreateSessionRequest) SetHeartbeatTimeout(s string) error {
	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("livy: invalid heartbeat timeout %q: %w", s, err)
	}
	secs := int64(d / time.Second)
	r.HeartbeatTimeoutInSecond = &secs
	return nil
}

// ListSessions retrieves a window of the active interactive sessions.
//
// GET /sessions
func (c *Client) ListSessions(ctx context.Context, opt *ListOptions, opts ...RequestOption) (*Sessions, *http.Response, error) {
	sessions := new(Sessions)
	resp, err := c.get(ctx, "/sessions"+opt.query(), sessions, opts)
	if err != nil {
		return nil, resp, err
	}
	return sessions, resp, nil
}

// CreateSession creates a new interactive session.
//
// POST /sessions
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest, opts ...RequestOption) (*Session, *http.Response, error) {
	session := new(Session)
	resp, err := c.post(ctx, "/sessions", req, session, opts)
	if err != nil {
		return nil, resp, err
	}
	return session, resp, nil
}

// GetSession retrieves a single session.
//
// GET /sessions/{sessionId}
func (c *Client) GetSession(ctx context.Context, sessionId int64, opts ...RequestOption) (*Session, *http.Response, error) {
	session := new(Session)
	resp, err := c.get(ctx, fmt.Sprintf("/sessions/%d", sessionId), session, opts)
	if err != nil {
		return nil, resp, err
	}
	return session, resp, nil
}

// GetSessionState retrieves only the state of a single session.
//
// GET /sessions/{sessionId}/state
func (c *Client) GetSessionState(ctx context.Context, sessionId int64, opts ...RequestOption) (*SessionStateInfo, *http.Response, error) {
	info := new(SessionStateInfo)
	resp, err := c.get(ctx, fmt.Sprintf("/sessions/%d/state", sessionId), info, opts)
	if err != nil {
		return nil, resp, err
	}
	return info, resp, nil
}

// DeleteSession kills the session. Subsequent reads of the session may 404.
//
// DELETE /sessions/{sessionId}
func (c *Client) DeleteSession(ctx context.Context, sessionId int64, opts ...RequestOption) (*DeleteResult, *http.Response, error) {
	result := new(DeleteResult)
	resp, err := c.delete(ctx, fmt.Sprintf("/sessions/%d", sessionId), result, opts)
	if err != nil {
		return nil, resp, err
	}
	return result, resp, nil
}

// GetSessionLog retrieves a window of the session's log lines.
//
// GET /sessions/{sessionId}/log
func (c *Client) GetSessionLog(ctx context.Context, sessionId int64, opt *ListOptions, opts ...RequestOption) (*SessionLog, *http.Response, error) {
	sessionLog := new(SessionLog)
	resp, err := c.get(ctx, fmt.Sprintf("/sessions/%d/log%s", sessionId, opt.query()), sessionLog, opts)
	if err != nil {
		return nil, resp, err
	}
	return sessionLog, resp, nil
}
