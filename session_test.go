package livy_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	livy "github.com/kjmrknsn/livy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "from=0&size=10", r.URL.RawQuery)
		w.Write([]byte(`{"from":0,"total":1,"sessions":[{"id":7,"state":"idle"}]}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	sessions, resp, err := c.ListSessions(context.Background(), &livy.ListOptions{
		From: livy.Ptr(int64(0)),
		Size: livy.Ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, sessions.Total)
	assert.Equal(t, int64(1), *sessions.Total)
	require.Len(t, sessions.Sessions, 1)
	assert.Equal(t, int64(7), *sessions.Sessions[0].Id)
	assert.Equal(t, livy.SessionIdle, *sessions.Sessions[0].State)
}

func TestListSessions_NoOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	sessions, _, err := c.ListSessions(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, sessions.From)
	assert.Nil(t, sessions.Total)
	assert.Nil(t, sessions.Sessions)
}

func TestCreateSession_MinimalBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		// All optional fields absent: only the required kind survives.
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"kind":"spark"}`, string(body))

		w.Write([]byte(`{"id":0,"state":"starting","kind":"spark"}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	session, _, err := c.CreateSession(context.Background(), &livy.CreateSessionRequest{Kind: livy.KindSpark})
	require.NoError(t, err)
	assert.Equal(t, int64(0), *session.Id)
	assert.Equal(t, livy.SessionStarting, *session.State)
}

func TestCreateSession_FullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "pyspark", body["kind"])
		assert.Equal(t, "hue", body["proxyUser"])
		assert.Equal(t, "4g", body["driverMemory"])
		assert.Equal(t, float64(2), body["driverCores"])
		assert.Equal(t, []any{"s3://libs/util.jar"}, body["jars"])
		assert.Equal(t, map[string]any{"spark.shuffle.compress": "true"}, body["conf"])
		assert.Equal(t, float64(600), body["heartbeatTimeoutInSecond"])

		// Absent optionals never serialize, not even as null.
		assert.NotContains(t, body, "executorMemory")
		assert.NotContains(t, body, "queue")

		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	req := &livy.CreateSessionRequest{
		Kind:         livy.KindPyspark,
		ProxyUser:    livy.Ptr("hue"),
		Jars:         []string{"s3://libs/util.jar"},
		DriverMemory: livy.Ptr("4g"),
		DriverCores:  livy.Ptr(int64(2)),
		Conf:         map[string]string{"spark.shuffle.compress": "true"},
	}
	require.NoError(t, req.SetHeartbeatTimeout("10m"))

	_, _, err = c.CreateSession(context.Background(), req)
	require.NoError(t, err)
}

func TestCreateSessionRequest_SetHeartbeatTimeout(t *testing.T) {
	req := &livy.CreateSessionRequest{Kind: livy.KindSpark}

	require.NoError(t, req.SetHeartbeatTimeout("90s"))
	require.NotNil(t, req.HeartbeatTimeoutInSecond)
	assert.Equal(t, int64(90), *req.HeartbeatTimeoutInSecond)

	require.NoError(t, req.SetHeartbeatTimeout("2h"))
	assert.Equal(t, int64(7200), *req.HeartbeatTimeoutInSecond)

	err := req.SetHeartbeatTimeout("soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid heartbeat timeout")
}

func TestGetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/7", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		w.Write([]byte(`{
			"id": 7,
			"appId": "application_1234_0007",
			"owner": "alice",
			"proxyUser": "hue",
			"kind": "pyspark",
			"log": ["line1", "line2"],
			"state": "busy",
			"appInfo": {"driverLogUrl": null, "sparkUiUrl": "http://ui/7"}
		}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	session, _, err := c.GetSession(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), *session.Id)
	assert.Equal(t, "application_1234_0007", *session.AppId)
	assert.Equal(t, "alice", *session.Owner)
	assert.Equal(t, "hue", *session.ProxyUser)
	assert.Equal(t, livy.KindPyspark, *session.Kind)
	assert.Equal(t, []string{"line1", "line2"}, session.Log)
	assert.Equal(t, livy.SessionBusy, *session.State)

	require.Contains(t, session.AppInfo, "driverLogUrl")
	assert.Nil(t, session.AppInfo["driverLogUrl"])
	require.Contains(t, session.AppInfo, "sparkUiUrl")
	assert.Equal(t, "http://ui/7", *session.AppInfo["sparkUiUrl"])
}

func TestGetSessionState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/3/state", r.URL.Path)
		w.Write([]byte(`{"id":3,"state":"shutting_down"}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	info, _, err := c.GetSessionState(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), *info.Id)
	assert.Equal(t, livy.SessionShuttingDown, *info.State)
}

func TestDeleteSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/7", r.URL.Path)
		assert.Equal(t, "DELETE", r.Method)
		assert.NotEmpty(t, r.Header.Get("X-Requested-By"))
		w.Write([]byte(`{"msg":"deleted"}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	result, resp, err := c.DeleteSession(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, result.Msg)
	assert.Equal(t, "deleted", *result.Msg)
}

func TestGetSessionLog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/7/log", r.URL.Path)
		assert.Equal(t, "from=100&size=50", r.URL.RawQuery)
		w.Write([]byte(`{"id":7,"from":100,"total":1000,"log":["INFO ready"]}`))
	}))
	defer srv.Close()

	c, err := livy.NewClient(srv.URL)
	require.NoError(t, err)

	sessionLog, _, err := c.GetSessionLog(context.Background(), 7, &livy.ListOptions{
		From: livy.Ptr(int64(100)),
		Size: livy.Ptr(int64(50)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), *sessionLog.Id)
	assert.Equal(t, int64(100), *sessionLog.From)
	assert.Equal(t, int64(1000), *sessionLog.Total)
	assert.Equal(t, []string{"INFO ready"}, sessionLog.Log)
}
