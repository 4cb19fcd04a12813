package store

import "time"

type Organization struct {
	ID        int64     `json:"orgId"`
	Name      string    `json:"orgName"`
	CreatedBy *int64    `json:"createdBy"`
	CreatedOn time.Time `json:"createdOn"`
}

// User is an API caller. The raw token is never stored, only its SHA-256.
type User struct {
	ID        int64     `json:"userId"`
	Name      string    `json:"userName"`
	Email     string    `json:"email"`
	TokenHash string    `json:"-"`
	CreatedOn time.Time `json:"createdOn"`
}

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "Active"
	ProjectArchived ProjectStatus = "Archived"
)

func (s ProjectStatus) Valid() bool {
	return s == ProjectActive || s == ProjectArchived
}

type Project struct {
	ID          int64         `json:"projectId"`
	OrgID       int64         `json:"orgId"`
	Name        string        `json:"projectName"`
	Description *string       `json:"projectDescription"`
	Status      ProjectStatus `json:"status"`
	CreatedBy   *int64        `json:"createdBy"`
	UpdatedBy   *int64        `json:"updatedBy"`
	CreatedOn   time.Time     `json:"createdOn"`
	UpdatedOn   time.Time     `json:"updatedOn"`
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type TestCase struct {
	ID             int64     `json:"testId"`
	Title          string    `json:"title"`
	SectionID      *int64    `json:"sectionId"`
	ProjectID      int64     `json:"projectId"`
	Priority       Priority  `json:"priority"`
	Preconditions  string    `json:"preconditions"`
	Steps          string    `json:"steps"`
	ExpectedResult string    `json:"expectedResult"`
	CreatedBy      *int64    `json:"createdBy"`
	UpdatedBy      *int64    `json:"updatedBy"`
	CreatedOn      time.Time `json:"createdOn"`
	UpdatedOn      time.Time `json:"updatedOn"`
}

type RunState string

const (
	RunActive RunState = "Active"
	RunLocked RunState = "Locked"
)

type Run struct {
	ID          int64     `json:"runId"`
	ProjectID   int64     `json:"projectId"`
	Name        string    `json:"runName"`
	Description *string   `json:"runDescription"`
	State       RunState  `json:"state"`
	CreatedBy   *int64    `json:"createdBy"`
	CreatedOn   time.Time `json:"createdOn"`
	UpdatedOn   time.Time `json:"updatedOn"`
}

type Status string

const (
	StatusUntested Status = "Untested"
	StatusPassed   Status = "Passed"
	StatusFailed   Status = "Failed"
	StatusRetest   Status = "Retest"
	StatusBlocked  Status = "Blocked"
	StatusSkipped  Status = "Skipped"
)

// Statuses lists every run test status in display order.
var Statuses = []Status{
	StatusUntested, StatusPassed, StatusFailed, StatusRetest, StatusBlocked, StatusSkipped,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// RunTest is the status of one test case inside a run.
type RunTest struct {
	RunID     int64     `json:"runId"`
	TestID    int64     `json:"testId"`
	Title     string    `json:"title"`
	SectionID *int64    `json:"sectionId"`
	Status    Status    `json:"status"`
	Comment   string    `json:"comment"`
	UpdatedBy *int64    `json:"updatedBy"`
	UpdatedOn time.Time `json:"updatedOn"`
}

type RunSummary struct {
	RunID    int64          `json:"runId"`
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
}
