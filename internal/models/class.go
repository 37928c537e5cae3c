package models

// Class is the owning entity of sessions. It is read-only to the scheduler.
type Class struct {
	ID        string  `db:"id" json:"id"`
	CenterID  string  `db:"center_id" json:"center_id"`
	Name      string  `db:"name" json:"name"`
	CourseID  *string `db:"course_id" json:"course_id,omitempty"`
	TeacherID *string `db:"teacher_id" json:"teacher_id,omitempty"`
}

// ClassTeacher maps a class to its (optional) teacher.
type ClassTeacher struct {
	ClassID   string  `db:"class_id" json:"class_id"`
	TeacherID *string `db:"teacher_id" json:"teacher_id,omitempty"`
}

// ClassParticipants lists who attends a class.
type ClassParticipants struct {
	ClassID    string   `json:"class_id"`
	TeacherID  *string  `json:"teacher_id,omitempty"`
	StudentIDs []string `json:"student_ids"`
}
