package model

// MailKind selects the template a queued mail is rendered with.
type MailKind string

const (
	MailRegistration MailKind = "registration"
	MailReminder     MailKind = "reminder"
	MailAttendance   MailKind = "attendance"
)

// MailJob is one queued outbound email. Data feeds the template.
type MailJob struct {
	Kind     MailKind          `json:"kind"`
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Data     map[string]string `json:"data"`
	Attempts int               `json:"attempts"`
}

// ReminderRequest customizes the event reminder. Empty fields fall back to defaults.
type ReminderRequest struct {
	Venue string `json:"venue" binding:"max=200"`
	Time  string `json:"time" binding:"max=50"`
}

// ReminderResult reports how many reminders were queued.
type ReminderResult struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
}
