package models

import (
	"encoding/json"
	"fmt"
)

// TaskStatus is the lifecycle position of a task entry.
type TaskStatus int

const (
	TaskStatusPending TaskStatus = 0
	TaskStatusSent    TaskStatus = 1
	TaskStatusDone    TaskStatus = 2
)

// Next returns the status after one forward toggle (pending → sent → done →
// pending).
func (s TaskStatus) Next() TaskStatus {
	return (s + 1) % 3
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "pending"
	case TaskStatusSent:
		return "sent"
	case TaskStatusDone:
		return "done"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Task is one timesheet entry. The backend sends ids and status as either
// numbers or strings depending on the endpoint, so both fields use flexible
// decoding.
type Task struct {
	ID              FlexID     `json:"id"`
	Company         string     `json:"company"`
	Project         string     `json:"project"`
	TaskType        string     `json:"task_type"`
	TaskDescription string     `json:"task_description"`
	TaskDate        string     `json:"task_date"`
	EntryTime       string     `json:"entry_time"`
	ExitTime        string     `json:"exit_time"`
	LunchHours      string     `json:"lunch_hours"`
	HourType        string     `json:"hour_type"`
	Status          TaskStatus `json:"status"`
	Fullname        string     `json:"fullname,omitempty"`

	// Optimistic marks a locally synthesized entry awaiting server
	// confirmation. Never set on server responses.
	Optimistic bool `json:"optimistic,omitempty"`
}

// FlexID is an identifier that may arrive as a JSON number or string. It
// compares and marshals as its string form.
type FlexID string

func (f FlexID) String() string { return string(f) }

func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// Equals reports whether the two ids name the same entity regardless of the
// wire representation either side arrived in.
func (f FlexID) Equals(other any) bool {
	switch v := other.(type) {
	case FlexID:
		return string(f) == string(v)
	case string:
		return string(f) == v
	case int:
		return string(f) == fmt.Sprintf("%d", v)
	case int64:
		return string(f) == fmt.Sprintf("%d", v)
	case float64:
		return string(f) == fmt.Sprintf("%v", v)
	default:
		return false
	}
}

// UnmarshalJSON accepts 0/1/2 as number or numeric string.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var f FlexID
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	switch f {
	case "0":
		*s = TaskStatusPending
	case "1":
		*s = TaskStatusSent
	case "2":
		*s = TaskStatusDone
	default:
		return fmt.Errorf("invalid task status %q", f)
	}
	return nil
}

// Pagination is the server's page metadata for a task collection. It must
// only ever be replaced together with the task slice it describes.
type Pagination struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// TaskPage is one page of tasks with its metadata, as returned by the list
// and filter endpoints.
type TaskPage struct {
	Tasks []Task     `json:"tasks"`
	Pages Pagination `json:"pages"`
}
