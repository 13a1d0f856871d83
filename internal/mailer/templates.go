package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/ptpcell/placement-backend/internal/model"
)

var templates = map[model.MailKind]*template.Template{
	model.MailRegistration: template.Must(template.New("registration").Parse(`<p>Hi {{.name}},</p>
<p>You are registered for <strong>{{.event_name}}</strong> with roll number {{.roll_number}}.</p>
<p>Show this code at the entrance to mark your attendance:</p>
<p style="font-family:monospace;font-size:18px">{{.qr_token}}</p>
<p>Placement Cell</p>`)),

	model.MailReminder: template.Must(template.New("reminder").Parse(`<p>Hi {{.name}},</p>
<p>This is a reminder for <strong>{{.event_name}}</strong>.</p>
<p>Venue: {{.venue}}<br>Time: {{.time}}</p>
<p>Please carry your registration code.</p>
<p>Placement Cell</p>`)),

	model.MailAttendance: template.Must(template.New("attendance").Parse(`<p>Hi {{.name}},</p>
<p>Thank you for attending <strong>{{.event_name}}</strong>. Your attendance has been recorded.</p>
<p>Placement Cell</p>`)),
}

// Render turns a queued job into a deliverable message.
func Render(job model.MailJob) (Message, error) {
	tpl, ok := templates[job.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail kind %q", job.Kind)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, job.Data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", job.Kind, err)
	}
	return Message{To: job.To, Subject: job.Subject, HTML: buf.String()}, nil
}
