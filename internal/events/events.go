package events

import "time"

// Names of the domain events published after a write commits.
const (
	StudentLeaveCreated    = "leave.student.created"
	StaffLeaveCreated      = "leave.staff.created"
	LeaveDecided           = "leave.decided"
	StudentFeedbackCreated = "feedback.student.created"
	StaffFeedbackCreated   = "feedback.staff.created"
	FeedbackReplied        = "feedback.replied"
	ResultSaved            = "result.saved"
	HolidayCreated         = "holiday.created"
	HolidayDeleted         = "holiday.deleted"
	AnnouncementSent       = "announcement.sent"
)

// Event is a committed domain write.
type Event struct {
	Name     string
	Payload  any
	Occurred time.Time
}

// LeaveCreated accompanies StudentLeaveCreated and StaffLeaveCreated.
type LeaveCreated struct {
	LeaveID   string
	AccountID string
	Date      time.Time
}

// LeaveDecision accompanies LeaveDecided.
type LeaveDecision struct {
	LeaveID   string
	AccountID string
	DecidedBy string
	Approved  bool
	Date      time.Time
}

// FeedbackCreated accompanies StudentFeedbackCreated and StaffFeedbackCreated.
type FeedbackCreated struct {
	FeedbackID string
	AccountID  string
	Body       string
}

// FeedbackReply accompanies FeedbackReplied.
type FeedbackReply struct {
	FeedbackID string
	AccountID  string
	RepliedBy  string
	Reply      string
}

// ResultSavedPayload accompanies ResultSaved. Created is false when an existing row was updated.
type ResultSavedPayload struct {
	ResultID  string
	StudentID string
	SubjectID string
	Created   bool
}

// HolidayChanged accompanies HolidayCreated and HolidayDeleted.
type HolidayChanged struct {
	HolidayID string
	Name      string
	Date      time.Time
}

// Announcement accompanies AnnouncementSent.
type Announcement struct {
	SenderID   string
	Recipients []string
	Title      string
	Message    string
}
