package hrclient

import (
	"strconv"
	"time"

	"github.com/peoplesync/absence-bridge/pkg/datamodel"
)

// Wire shapes of the HR platform API. Kept separate from the datamodel so
// upstream renames stay contained in this package.

type employeeDTO struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	SupervisorID *int64 `json:"supervisor_id"`
}

func (e employeeDTO) toModel() datamodel.Employee {
	m := datamodel.Employee{
		ID:    strconv.FormatInt(e.ID, 10),
		Email: e.Email,
	}
	if e.SupervisorID != nil {
		m.ManagerID = strconv.FormatInt(*e.SupervisorID, 10)
	}
	return m
}

type leaveRequestDTO struct {
	ID              int64  `json:"id"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Status          string `json:"status"`
	HalfDayStart    bool   `json:"half_day_start"`
	HalfDayEnd      bool   `json:"half_day_end"`
	TimeOffTypeID   int64  `json:"time_off_type_id"`
	Comment         string `json:"comment"`
	StatusComment   string `json:"status_comment"`
	ApprovalComment string `json:"approval_comment"`
	Note            string `json:"note"`
	UpdatedAt       string `json:"updated_at"`
}

func (r leaveRequestDTO) toModel() datamodel.LeaveRequest {
	return datamodel.LeaveRequest{
		ID:              r.ID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Decision:        r.Status,
		HalfDayStart:    r.HalfDayStart,
		HalfDayEnd:      r.HalfDayEnd,
		ReasonID:        strconv.FormatInt(r.TimeOffTypeID, 10),
		Comment:         r.Comment,
		StatusComment:   r.StatusComment,
		ApprovalComment: r.ApprovalComment,
		Note:            r.Note,
		UpdatedAt:       parseTimestamp(r.UpdatedAt),
	}
}

type absenceDTO struct {
	ID            int64  `json:"id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Status        string `json:"status"` // "active" or "cancelled"
	HalfDayStart  bool   `json:"half_day_start"`
	HalfDayEnd    bool   `json:"half_day_end"`
	TimeOffTypeID int64  `json:"time_off_type_id"`
	Comment       string `json:"comment"`
	UpdatedAt     string `json:"updated_at"`
}

func (a absenceDTO) toModel() datamodel.Absence {
	return datamodel.Absence{
		ID:           a.ID,
		StartDate:    a.StartDate,
		EndDate:      a.EndDate,
		Cancelled:    a.Status == "cancelled",
		HalfDayStart: a.HalfDayStart,
		HalfDayEnd:   a.HalfDayEnd,
		ReasonID:     strconv.FormatInt(a.TimeOffTypeID, 10),
		Comment:      a.Comment,
		UpdatedAt:    parseTimestamp(a.UpdatedAt),
	}
}

// parseTimestamp tolerates the two timestamp layouts observed upstream. The
// value is display-only, so an unparsable timestamp degrades to zero rather
// than failing the fetch.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
