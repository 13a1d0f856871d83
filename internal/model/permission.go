package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionEventsRead allows viewing events, questions and leaderboards.
	PermissionEventsRead Permission = "events:read"

	// PermissionEventsWrite allows creating, editing and deleting events and their questions.
	PermissionEventsWrite Permission = "events:write"

	// PermissionQuizControl allows activating and deactivating questions and clearing leaderboards.
	PermissionQuizControl Permission = "quiz:control"

	// PermissionQuizzesRead allows viewing standalone quizzes and their analytics.
	PermissionQuizzesRead Permission = "quizzes:read"

	// PermissionQuizzesWrite allows creating, editing, deleting and toggling standalone quizzes.
	PermissionQuizzesWrite Permission = "quizzes:write"

	// PermissionStudentsRead allows viewing student lists and details.
	PermissionStudentsRead Permission = "students:read"

	// PermissionStudentsWrite allows creating, updating, importing and deleting students.
	PermissionStudentsWrite Permission = "students:write"

	// PermissionStudentsReview allows recording recruitment reviews.
	PermissionStudentsReview Permission = "students:review"

	// PermissionStudentsResetSession allows resetting a student's active session.
	PermissionStudentsResetSession Permission = "students:reset_session"

	// PermissionAttendanceMark allows scanning QR codes to mark attendance.
	PermissionAttendanceMark Permission = "attendance:mark"

	// PermissionAlumniRead allows viewing alumni.
	PermissionAlumniRead Permission = "alumni:read"

	// PermissionAlumniWrite allows importing alumni.
	PermissionAlumniWrite Permission = "alumni:write"

	// PermissionNotificationsSend allows sending event reminders.
	PermissionNotificationsSend Permission = "notifications:send"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionEventsRead,
	PermissionEventsWrite,
	PermissionQuizControl,
	PermissionQuizzesRead,
	PermissionQuizzesWrite,
	PermissionStudentsRead,
	PermissionStudentsWrite,
	PermissionStudentsReview,
	PermissionStudentsResetSession,
	PermissionAttendanceMark,
	PermissionAlumniRead,
	PermissionAlumniWrite,
	PermissionNotificationsSend,
}

// Role names seeded by the initial migration.
const (
	RoleAdmin       = "admin"
	RoleCoordinator = "coordinator"
)

// CoordinatorPermissions is the default grant for volunteer coordinators.
var CoordinatorPermissions = []Permission{
	PermissionEventsRead,
	PermissionStudentsRead,
	PermissionAttendanceMark,
	PermissionQuizzesRead,
}
