package models

import "gorm.io/datatypes"

// Student is the profile attached to a student account.
type Student struct {
	BaseModel

	AccountID          string   `gorm:"type:varchar(36);uniqueIndex;not null" json:"account_id"`
	Account            *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"account,omitempty"`
	RegistrationNumber string   `gorm:"type:varchar(20)" json:"registration_number"`
}

// Staff is the profile attached to a staff account.
type Staff struct {
	BaseModel

	AccountID     string   `gorm:"type:varchar(36);uniqueIndex;not null" json:"account_id"`
	Account       *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"account,omitempty"`
	StaffIDNumber string   `gorm:"type:varchar(20)" json:"staff_id_number"`
}

// Subject is taught by exactly one staff member.
type Subject struct {
	BaseModel

	Name    string `gorm:"type:varchar(120);not null" json:"name"`
	StaffID string `gorm:"type:varchar(36);index;not null" json:"staff_id"`
	Staff   *Staff `gorm:"foreignKey:StaffID;constraint:OnDelete:CASCADE" json:"staff,omitempty"`
}

// LeaveStatus tracks the admin decision on a leave request.
type LeaveStatus int

const (
	LeavePending  LeaveStatus = 0
	LeaveApproved LeaveStatus = 1
	LeaveRejected LeaveStatus = -1
)

// LeaveRequest is submitted by a student or staff member. Role records which.
type LeaveRequest struct {
	BaseModel

	AccountID string          `gorm:"type:varchar(36);index;not null" json:"account_id"`
	Account   *Account        `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Role      Role            `gorm:"type:varchar(16);not null" json:"role"`
	Date      datatypes.Date  `gorm:"not null" json:"date"`
	EndDate   *datatypes.Date `json:"end_date,omitempty"`
	Message   string          `gorm:"type:text" json:"message"`
	Status    LeaveStatus     `gorm:"not null;default:0" json:"status"`
}

// Feedback is free text sent to the administration, optionally answered.
type Feedback struct {
	BaseModel

	AccountID string   `gorm:"type:varchar(36);index;not null" json:"account_id"`
	Account   *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
	Role      Role     `gorm:"type:varchar(16);not null" json:"role"`
	Body      string   `gorm:"type:text;not null" json:"feedback"`
	Reply     string   `gorm:"type:text" json:"reply"`
}

// StudentResult holds one score pair per student and subject.
type StudentResult struct {
	BaseModel

	StudentID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_result_student_subject" json:"student_id"`
	Student   *Student `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	SubjectID string   `gorm:"type:varchar(36);not null;uniqueIndex:idx_result_student_subject" json:"subject_id"`
	Subject   *Subject `gorm:"foreignKey:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
	Test      float64  `gorm:"not null;default:0" json:"test"`
	Exam      float64  `gorm:"not null;default:0" json:"exam"`
}

// Holiday is a college-wide day off. At most one per date.
type Holiday struct {
	BaseModel

	Name string         `gorm:"type:varchar(120);not null" json:"name"`
	Date datatypes.Date `gorm:"uniqueIndex;not null" json:"date"`
}
