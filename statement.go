package livy

import (
	"context"
	"fmt"
	"net/http"
)

// Statement represents a code statement submitted to a session. A statement
// is immutable once available, except that cancellation can be requested.
type Statement struct {
	Id     *int64           `json:"id,omitempty"`
	State  *StatementState  `json:"state,omitempty"`
	Output *StatementOutput `json:"output,omitempty"`
}

// StatementOutput is the result of a completed statement.
type StatementOutput struct {
	Status         *string            `json:"status,omitempty"`
	ExecutionCount *int64             `json:"execution_count,omitempty"`
	Data           map[string]*string `json:"data,omitempty"`
}

// Statements is the collection of statements in a session.
type Statements struct {
	TotalStatements *int64      `json:"total_statements,omitempty"`
	Statements      []Statement `json:"statements,omitempty"`
}

// RunStatementRequest carries the code to run in a session.
type RunStatementRequest struct {
	Code string `json:"code"`
}

// CancelResult is the acknowledgement returned by a statement cancel call.
type CancelResult struct {
	Msg *string `json:"msg,omitempty"`
}

// ListStatements retrieves the statements of a session.
//
// GET /sessions/{sessionId}/statements
func (c *Client) ListStatements(ctx context.Context, sessionId int64, opts ...RequestOption) (*Statements, *http.Response, error) {
	statements := new(Statements)
	resp, err := c.get(ctx, fmt.Sprintf("/sessions/%d/statements", sessionId), statements, opts)
	if err != nil {
		return nil, resp, err
	}
	return statements, resp, nil
}

// RunStatement submits code to a session.
//
// POST /sessions/{sessionId}/statements
func (c *Client) RunStatement(ctx context.Context, sessionId int64, req *RunStatementRequest, opts ...RequestOption) (*Statement, *http.Response, error) {
	statement := new(Statement)
	resp, err := c.post(ctx, fmt.Sprintf("/sessions/%d/statements", sessionId), req, statement, opts)
	if err != nil {
		return nil, resp, err
	}
	return statement, resp, nil
}

// GetStatement retrieves a single statement of a session.
//
// GET /sessions/{sessionId}/statements/{statementId}
func (c *Client) GetStatement(ctx context.Context, sessionId, statementId int64, opts ...RequestOption) (*Statement, *http.Response, error) {
	statement := new(Statement)
	resp, err := c.get(ctx, fmt.Sprintf("/sessions/%d/statements/%d", sessionId, statementId), statement, opts)
	if err != nil {
		return nil, resp, err
	}
	return statement, resp, nil
}

// CancelStatement requests cancellation of a statement.
//
// POST /sessions/{sessionId}/statements/{statementId}/cancel
func (c *Client) CancelStatement(ctx context.Context, sessionId, statementId int64, opts ...RequestOption) (*CancelResult, *http.Response, error) {
	result := new(CancelResult)
	resp, err := c.postBodiless(ctx, fmt.Sprintf("/sessions/%d/statements/%d/cancel", sessionId, statementId), result, opts)
	if err != nil {
		return nil, resp, err
	}
	return result, resp, nil
}
