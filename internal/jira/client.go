package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Tracker is the narrow surface the conversation layer consumes.
type Tracker interface {
	Configured() bool
	TestConnection(ctx context.Context) (User, error)
	LoadReferenceData(ctx context.Context) (ReferenceData, error)
	CreateIssue(ctx context.Context, payload IssuePayload) (CreatedIssue, error)
	GetIssue(ctx context.Context, key string) (map[string]any, error)
	UpdateIssue(ctx context.Context, key string, payload IssuePayload) error
	LogWork(ctx context.Context, key, timeSpent, comment string) (Worklog, error)
}

type Config struct {
	BaseURL        string
	Email          string
	APIToken       string
	DefaultProject string
	Timeout        time.Duration
}

// TokenFunc supplies an OAuth bearer token when the instance was connected
// through the Atlassian OAuth flow instead of an API token.
type TokenFunc func() string

// RESTClient talks to the Jira Cloud REST API v3 with a small surface
// tailored to our needs.
type RESTClient struct {
	cfg         Config
	httpClient  *http.Client
	bearerToken TokenFunc
}

func NewClient(cfg Config, bearer TokenFunc) *RESTClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTClient{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: timeout},
		bearerToken: bearer,
	}
}

// Configured reports whether credentials exist. A bearer token obtained via
// OAuth counts even without email/API token.
func (c *RESTClient) Configured() bool {
	if c.cfg.BaseURL == "" {
		return false
	}
	if c.cfg.Email != "" && c.cfg.APIToken != "" {
		return true
	}
	return c.bearerToken != nil && c.bearerToken() != ""
}

// ---- Helpers ----

func (c *RESTClient) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	u := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/rest/api/3/" + endpoint
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	} else {
		auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.Email + ":" + c.cfg.APIToken))
		req.Header.Set("Authorization", "Basic "+auth)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, wrapTransport(err)
	}
	return resp, nil
}

func (c *RESTClient) bearer() string {
	if c.bearerToken == nil {
		return ""
	}
	// Basic auth wins when both are configured.
	if c.cfg.Email != "" && c.cfg.APIToken != "" {
		return ""
	}
	return c.bearerToken()
}

func wrapTransport(err error) error {
	te := &TransportError{Message: err.Error()}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() || errors.Is(err, context.DeadlineExceeded) {
		te.Timeout = true
	}
	return te
}

func (c *RESTClient) request(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	resp, err := c.do(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &TransportError{StatusCode: resp.StatusCode, Message: jiraErrorMessage(b, resp.Status)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// jiraErrorMessage pulls the first human-readable message out of a Jira
// error body, falling back to the HTTP status line.
func jiraErrorMessage(body []byte, status string) string {
	var parsed struct {
		ErrorMessages []string `json:"errorMessages"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.ErrorMessages) > 0 {
		return parsed.ErrorMessages[0]
	}
	return status
}

// ---- Operations ----

// TestConnection calls the myself endpoint and returns the account it
// authenticated as.
func (c *RESTClient) TestConnection(ctx context.Context) (User, error) {
	var u User
	if err := c.request(ctx, http.MethodGet, "myself", nil, &u); err != nil {
		return User{}, err
	}
	if u.AccountID == "" {
		return User{}, &TransportError{Message: "invalid response from jira"}
	}
	return u, nil
}

// LoadReferenceData fetches projects, issue types, priorities and statuses.
func (c *RESTClient) LoadReferenceData(ctx context.Context) (ReferenceData, error) {
	var ref ReferenceData

	var projects struct {
		Values []Project `json:"values"`
	}
	if err := c.request(ctx, http.MethodGet, "project/search", nil, &projects); err != nil {
		return ref, err
	}
	ref.Projects = projects.Values

	if err := c.request(ctx, http.MethodGet, "issuetype", nil, &ref.IssueTypes); err != nil {
		return ref, err
	}
	if err := c.request(ctx, http.MethodGet, "priority", nil, &ref.Priorities); err != nil {
		return ref, err
	}
	if err := c.request(ctx, http.MethodGet, "status", nil, &ref.Statuses); err != nil {
		return ref, err
	}
	return ref, nil
}

// CreateIssue submits a new issue and returns its key and browse URL.
func (c *RESTClient) CreateIssue(ctx context.Context, payload IssuePayload) (CreatedIssue, error) {
	var created CreatedIssue
	if err := c.request(ctx, http.MethodPost, "issue", payload, &created); err != nil {
		return CreatedIssue{}, err
	}
	if created.Key == "" {
		return CreatedIssue{}, &TransportError{Message: "invalid response creating issue"}
	}
	created.URL = strings.TrimSuffix(c.cfg.BaseURL, "/") + "/browse/" + created.Key
	return created, nil
}

// GetIssue fetches an issue by key.
func (c *RESTClient) GetIssue(ctx context.Context, key string) (map[string]any, error) {
	var out map[string]any
	if err := c.request(ctx, http.MethodGet, "issue/"+url.PathEscape(key), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateIssue applies field changes to an existing issue.
func (c *RESTClient) UpdateIssue(ctx context.Context, key string, payload IssuePayload) error {
	return c.request(ctx, http.MethodPut, "issue/"+url.PathEscape(key), payload, nil)
}

// LogWork records time spent on an issue, e.g. "2h 30m".
func (c *RESTClient) LogWork(ctx context.Context, key, timeSpent, comment string) (Worklog, error) {
	body := map[string]any{"timeSpent": timeSpent}
	if comment != "" {
		body["comment"] = comment
	}
	var wl Worklog
	if err := c.request(ctx, http.MethodPost, fmt.Sprintf("issue/%s/worklog", url.PathEscape(key)), body, &wl); err != nil {
		return Worklog{}, err
	}
	if wl.ID == "" {
		return Worklog{}, &TransportError{Message: "invalid response logging work"}
	}
	return wl, nil
}

var timeSpentRe = regexp.MustCompile(`(?:(\d+)h)?\s*(?:(\d+)m)?`)

// ParseTimeSpent converts a worklog duration like "2h 30m" to minutes.
func ParseTimeSpent(timeSpent string) int {
	m := timeSpentRe.FindStringSubmatch(timeSpent)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}
