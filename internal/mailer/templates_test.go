package mailer

import (
	"testing"

	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Reminder(t *testing.T) {
	msg, err := Render(model.MailJob{
		Kind:    model.MailReminder,
		To:      "a@college.edu",
		Subject: "Reminder: PTP - Drive",
		Data: map[string]string{
			"name":       "Asha",
			"event_name": "Drive",
			"venue":      "PTP - HALL",
			"time":       "3:00 PM",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "a@college.edu", msg.To)
	assert.Equal(t, "Reminder: PTP - Drive", msg.Subject)
	assert.Contains(t, msg.HTML, "PTP - HALL")
	assert.Contains(t, msg.HTML, "3:00 PM")
}

func TestRender_EscapesData(t *testing.T) {
	msg, err := Render(model.MailJob{
		Kind: model.MailAttendance,
		Data: map[string]string{"name": "<script>x</script>", "event_name": "Drive"},
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := Render(model.MailJob{Kind: "newsletter"})
	assert.Error(t, err)
}
