package tasks

import (
	"fmt"
	"strings"
	"time"

	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/models"
)

// UpdateInput is a partial task edit. Nil fields are left untouched.
type UpdateInput struct {
	Company         *string
	Project         *string
	TaskType        *string
	TaskDescription *string
	TaskDate        *string
	EntryTime       *string
	ExitTime        *string
	LunchHours      *string
	HourType        *string
	Status          *models.TaskStatus
}

func (in UpdateInput) apply(t *models.Task) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&t.Company, in.Company)
	setString(&t.Project, in.Project)
	setString(&t.TaskType, in.TaskType)
	setString(&t.TaskDescription, in.TaskDescription)
	setString(&t.TaskDate, in.TaskDate)
	setString(&t.EntryTime, in.EntryTime)
	setString(&t.ExitTime, in.ExitTime)
	setString(&t.LunchHours, in.LunchHours)
	setString(&t.HourType, in.HourType)
	if in.Status != nil {
		t.Status = *in.Status
	}
}

// Validate checks a task submission before any network dispatch. Failures
// wrap apierrors.ErrValidation and are never retried.
func Validate(t models.Task) error {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"company", t.Company},
		{"project", t.Project},
		{"task_type", t.TaskType},
		{"task_date", t.TaskDate},
		{"entry_time", t.EntryTime},
		{"exit_time", t.ExitTime},
		{"hour_type", t.HourType},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apierrors.ErrValidation, strings.Join(missing, ", "))
	}

	entry, err := time.Parse("15:04", t.EntryTime)
	if err != nil {
		return fmt.Errorf("%w: invalid entry_time %q", apierrors.ErrValidation, t.EntryTime)
	}
	exit, err := time.Parse("15:04", t.ExitTime)
	if err != nil {
		return fmt.Errorf("%w: invalid exit_time %q", apierrors.ErrValidation, t.ExitTime)
	}
	if !entry.Before(exit) {
		return fmt.Errorf("%w: entry_time must be before exit_time", apierrors.ErrValidation)
	}
	return nil
}
