package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServerClient(t *testing.T, handler http.Handler) (*httptest.Server, *RESTClient) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{
		BaseURL:  srv.URL,
		Email:    "dev@example.com",
		APIToken: "token",
		Timeout:  2 * time.Second,
	}, nil)
	return srv, c
}

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient(Config{}, nil).Configured())
	assert.False(t, NewClient(Config{BaseURL: "https://x.atlassian.net"}, nil).Configured())
	assert.True(t, NewClient(Config{BaseURL: "https://x.atlassian.net", Email: "a", APIToken: "b"}, nil).Configured())
	assert.True(t, NewClient(Config{BaseURL: "https://x.atlassian.net"}, func() string { return "bearer" }).Configured())
	assert.False(t, NewClient(Config{BaseURL: "https://x.atlassian.net"}, func() string { return "" }).Configured())
}

func TestNotConfiguredFailsBeforeNetwork(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.TestConnection(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTestConnection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/myself", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Authorization"), "Basic ")
		_ = json.NewEncoder(w).Encode(User{AccountID: "abc123", DisplayName: "Dev"})
	})
	_, c := newTestServerClient(t, mux)

	u, err := c.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dev", u.DisplayName)
}

func TestTestConnectionAuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/myself", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"errorMessages": []string{"Invalid credentials"}})
	})
	_, c := newTestServerClient(t, mux)

	_, err := c.TestConnection(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, "Invalid credentials", te.Message)
}

func TestCreateIssue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload IssuePayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "[BUG] Login quebrado", payload.Fields["summary"])
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "10001", "key": "PROJ-17"})
	})
	srv, c := newTestServerClient(t, mux)

	created, err := c.CreateIssue(context.Background(), IssuePayload{Fields: map[string]any{
		"summary": "[BUG] Login quebrado",
	}})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-17", created.Key)
	assert.Equal(t, srv.URL+"/browse/PROJ-17", created.URL)
}

func TestCreateIssueNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/issue", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, c := newTestServerClient(t, mux)

	_, err := c.CreateIssue(context.Background(), IssuePayload{})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusNotFound, te.StatusCode)
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, Email: "a", APIToken: "b", Timeout: 50 * time.Millisecond}, nil)

	_, err := c.TestConnection(context.Background())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Timeout)
}

func TestLoadReferenceData(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/project/search", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"values": []Project{{Key: "PROJ", Name: "Projeto"}}})
	})
	mux.HandleFunc("/rest/api/3/issuetype", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]IssueType{{Name: "Bug"}, {Name: "Tarefa"}})
	})
	mux.HandleFunc("/rest/api/3/priority", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Priority{{Name: "High"}})
	})
	mux.HandleFunc("/rest/api/3/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Status{{Name: "To Do"}})
	})
	_, c := newTestServerClient(t, mux)

	ref, err := c.LoadReferenceData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PROJ", ref.Projects[0].Key)
	assert.Len(t, ref.IssueTypes, 2)
	assert.Len(t, ref.Priorities, 1)
	assert.Len(t, ref.Statuses, 1)
}

func TestLogWork(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/api/3/issue/PROJ-1/worklog", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "2h 30m", body["timeSpent"])
		_ = json.NewEncoder(w).Encode(Worklog{ID: "wl-1", TimeSpent: "2h 30m"})
	})
	_, c := newTestServerClient(t, mux)

	wl, err := c.LogWork(context.Background(), "PROJ-1", "2h 30m", "")
	require.NoError(t, err)
	assert.Equal(t, "wl-1", wl.ID)
}

func TestBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(User{AccountID: "abc"})
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL}, func() string { return "oauth-token" })

	_, err := c.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer oauth-token", gotAuth)
}

func TestParseTimeSpent(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"2h 30m", 150},
		{"2h", 120},
		{"45m", 45},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTimeSpent(tt.in), tt.in)
	}
}
