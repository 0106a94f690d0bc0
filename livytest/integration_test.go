package livytest_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	livy "github.com/kjmrknsn/livy-go"
	"github.com/kjmrknsn/livy-go/livytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSessionLifecycle drives a session from creation through statement
// execution to deletion.
func TestSessionLifecycle(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)
	ctx := context.Background()

	// Create: a fresh session starts in the starting state.
	session, _, err := client.CreateSession(ctx, &livy.CreateSessionRequest{
		Kind: livy.KindPyspark,
		Name: livy.Ptr("lifecycle-test"),
	})
	require.NoError(t, err)
	require.NotNil(t, session.Id)
	require.NotNil(t, session.State)
	assert.Equal(t, livy.SessionStarting, *session.State)
	assert.NotNil(t, session.Kind)
	assert.Equal(t, livy.KindPyspark, *session.Kind)

	id := *session.Id

	// Poll: the mock advances to idle on the next state read.
	state, _, err := client.GetSessionState(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, state.State)
	assert.Equal(t, livy.SessionIdle, *state.State)

	// Run a statement; it starts waiting and the session goes busy.
	stmt, _, err := client.RunStatement(ctx, id, &livy.RunStatementRequest{Code: "1 + 1"})
	require.NoError(t, err)
	require.NotNil(t, stmt.Id)
	require.NotNil(t, stmt.State)
	assert.Equal(t, livy.StatementWaiting, *stmt.State)

	// Poll the statement to completion: waiting -> running -> available.
	stmt, _, err = client.GetStatement(ctx, id, *stmt.Id)
	require.NoError(t, err)
	assert.Equal(t, livy.StatementRunning, *stmt.State)

	stmt, _, err = client.GetStatement(ctx, id, *stmt.Id)
	require.NoError(t, err)
	assert.Equal(t, livy.StatementAvailable, *stmt.State)
	require.NotNil(t, stmt.Output)
	require.NotNil(t, stmt.Output.Status)
	assert.Equal(t, "ok", *stmt.Output.Status)
	require.Contains(t, stmt.Output.Data, "text/plain")
	assert.Equal(t, "res: 1 + 1", *stmt.Output.Data["text/plain"])

	// The statement shows up in the listing.
	statements, _, err := client.ListStatements(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, statements.TotalStatements)
	assert.Equal(t, int64(1), *statements.TotalStatements)

	// Log lines accumulated during startup.
	sessionLog, _, err := client.GetSessionLog(ctx, id, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, sessionLog.Log)

	// Delete: the server acknowledges, then further reads 404.
	result, _, err := client.DeleteSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, result.Msg)
	assert.Equal(t, "deleted", *result.Msg)

	_, _, err = client.GetSession(ctx, id)
	var statusErr *livy.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode())
}

func TestStatementCancellation(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)
	ctx := context.Background()

	session, _, err := client.CreateSession(ctx, &livy.CreateSessionRequest{Kind: livy.KindSpark})
	require.NoError(t, err)
	id := *session.Id

	stmt, _, err := client.RunStatement(ctx, id, &livy.RunStatementRequest{Code: "while True: pass"})
	require.NoError(t, err)

	cancel, _, err := client.CancelStatement(ctx, id, *stmt.Id)
	require.NoError(t, err)
	require.NotNil(t, cancel.Msg)
	assert.Equal(t, "canceled", *cancel.Msg)

	// Cancellation takes effect over the next polls: cancelling, then
	// cancelled, with no output attached.
	stmt, _, err = client.GetStatement(ctx, id, *stmt.Id)
	require.NoError(t, err)
	assert.Equal(t, livy.StatementCancelling, *stmt.State)

	stmt, _, err = client.GetStatement(ctx, id, *stmt.Id)
	require.NoError(t, err)
	assert.Equal(t, livy.StatementCancelled, *stmt.State)
	assert.Nil(t, stmt.Output)
}

func TestBatchLifecycle(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)
	ctx := context.Background()

	batch, _, err := client.CreateBatch(ctx, &livy.CreateBatchRequest{
		File:      "/jobs/wordcount.jar",
		ClassName: livy.Ptr("com.example.WordCount"),
		Args:      []string{"hdfs:///input"},
	})
	require.NoError(t, err)
	require.NotNil(t, batch.Id)
	require.NotNil(t, batch.State)
	assert.Equal(t, livytest.BatchStateStarting, *batch.State)

	id := *batch.Id

	// The batch state is a free-form string that advances per poll.
	state, _, err := client.GetBatchState(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, state.State)
	assert.Equal(t, livytest.BatchStateRunning, *state.State)

	batchLog, _, err := client.GetBatchLog(ctx, id, &livy.ListOptions{From: livy.Ptr(int64(0)), Size: livy.Ptr(int64(10))})
	require.NoError(t, err)
	assert.NotEmpty(t, batchLog.Log)

	result, _, err := client.KillBatch(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, result.Msg)
	assert.Equal(t, "deleted", *result.Msg)

	_, _, err = client.GetBatch(ctx, id)
	var statusErr *livy.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode())
}

func TestListPaging(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := client.CreateSession(ctx, &livy.CreateSessionRequest{Kind: livy.KindSpark})
		require.NoError(t, err)
	}

	sessions, _, err := client.ListSessions(ctx, &livy.ListOptions{
		From: livy.Ptr(int64(1)),
		Size: livy.Ptr(int64(2)),
	})
	require.NoError(t, err)
	require.NotNil(t, sessions.Total)
	assert.Equal(t, int64(5), *sessions.Total)
	assert.Len(t, sessions.Sessions, 2)
	assert.Equal(t, int64(1), *sessions.From)
	assert.Equal(t, int64(1), *sessions.Sessions[0].Id)
}

// TestMissingRequestedByHeader verifies the mock enforces the CSRF guard on
// modifying requests the same way the live server does.
func TestMissingRequestedByHeader(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL(), livy.WithRequestedBy(""))
	require.NoError(t, err)

	_, _, err = client.CreateSession(context.Background(), &livy.CreateSessionRequest{Kind: livy.KindSpark})
	var statusErr *livy.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.StatusCode())
	assert.Contains(t, statusErr.Message, "CSRF")
}

func TestConcurrentClients(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, _, err := client.CreateSession(ctx, &livy.CreateSessionRequest{Kind: livy.KindSpark})
			if err != nil {
				errs <- err
				return
			}
			if _, _, err := client.GetSessionState(ctx, *session.Id); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	sessions, _, err := client.ListSessions(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(10), *sessions.Total)
}

func TestSessionNotFound(t *testing.T) {
	mockServer := livytest.NewMockLivyServer()
	defer mockServer.Close()

	client, err := livy.NewClient(mockServer.URL())
	require.NoError(t, err)

	_, _, err = client.GetSession(context.Background(), 42)
	require.Error(t, err)

	var statusErr *livy.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.StatusCode())
	assert.Contains(t, statusErr.Message, "42")
}
