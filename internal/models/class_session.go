package models

import "time"

// SessionStatus describes the lifecycle state of a class session.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
)

// Valid reports whether the status is one of the known values.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionStatusScheduled, SessionStatusCancelled, SessionStatusCompleted:
		return true
	}
	return false
}

// Active sessions occupy their room and teacher.
func (s SessionStatus) Active() bool {
	return s != SessionStatusCancelled
}

// ClassSession is a scheduled occurrence of a class.
type ClassSession struct {
	ID        string        `db:"id" json:"id"`
	CenterID  string        `db:"center_id" json:"center_id"`
	ClassID   string        `db:"class_id" json:"class_id"`
	StartTime time.Time     `db:"start_time" json:"start_time"`
	EndTime   time.Time     `db:"end_time" json:"end_time"`
	RoomName  *string       `db:"room_name" json:"room_name,omitempty"`
	Status    SessionStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Room returns the assigned room or an empty string.
func (s ClassSession) Room() string {
	if s.RoomName == nil {
		return ""
	}
	return *s.RoomName
}

// AnnotatedSession carries the owning class's teacher next to a session.
type AnnotatedSession struct {
	ClassSession
	TeacherID *string `db:"teacher_id" json:"teacher_id,omitempty"`
}

// ClassSessionDetail is the list projection with denormalised class data.
type ClassSessionDetail struct {
	ClassSession
	ClassName    string  `db:"class_name" json:"class_name"`
	CourseID     *string `db:"course_id" json:"course_id,omitempty"`
	CourseName   *string `db:"course_name" json:"course_name,omitempty"`
	TeacherID    *string `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName  *string `db:"teacher_name" json:"teacher_name,omitempty"`
	StudentCount int     `db:"student_count" json:"student_count"`
}

// ClassSessionFilter narrows session listings. End is exclusive.
type ClassSessionFilter struct {
	Start   time.Time
	End     time.Time
	ClassID string
}

// ClassScheduleTemplate is a weekly recurrence rule owned by a class.
// DayOfWeek follows time.Weekday (0 = Sunday); times are wall clock "HH:MM".
type ClassScheduleTemplate struct {
	ID        string  `db:"id" json:"id"`
	CenterID  string  `db:"center_id" json:"center_id"`
	ClassID   string  `db:"class_id" json:"class_id"`
	DayOfWeek int     `db:"day_of_week" json:"day_of_week"`
	StartTime string  `db:"start_time" json:"start_time"`
	EndTime   string  `db:"end_time" json:"end_time"`
	RoomName  *string `db:"room_name" json:"room_name,omitempty"`
}
