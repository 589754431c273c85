package jira

// User is the authenticated Jira account, as returned by the myself
// endpoint.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

type Project struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"iconUrl,omitempty"`
}

type Priority struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReferenceData caches the instance-level lookups the UI needs.
type ReferenceData struct {
	Projects   []Project   `json:"projects"`
	IssueTypes []IssueType `json:"issueTypes"`
	Priorities []Priority  `json:"priorities"`
	Statuses   []Status    `json:"statuses"`
}

// CreatedIssue is the result of a successful issue creation.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
	URL  string `json:"url"`
}

type Worklog struct {
	ID        string `json:"id"`
	TimeSpent string `json:"timeSpent"`
}
