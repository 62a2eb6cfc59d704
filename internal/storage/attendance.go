package storage

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
)

type AttendanceRecord struct {
	ID           int64  `json:"id"`
	TechnicianID int64  `json:"technician_id"`
	GroupID      int64  `json:"group_id"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Note         string `json:"note,omitempty"`
}

// SaveAttendance is one group's sheet for one day, submitted in a single call.
type SaveAttendance struct {
	GroupID int64              `json:"group_id"`
	Date    string             `json:"date"`
	Records []AttendanceRecord `json:"records"`
}
