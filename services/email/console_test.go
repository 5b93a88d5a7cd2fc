package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	logsvc "github.com/trezcool/gradebook/services/logger"
)

func newLogger() core.Logger {
	return logsvc.NewStdLogger(log.New(new(bytes.Buffer), "", 0))
}

func TestConsoleService_write(t *testing.T) {
	conf := core.NewTestConfig()
	svc := NewConsoleService(conf, newLogger())
	out := new(bytes.Buffer)
	svc.out = out

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Bob", Address: "bob@example.com"}},
		Subject:      "Results published",
		TemplateName: "results_published",
		TemplateData: map[string]interface{}{
			"StudentName":    "Bob",
			"ExamName":       "Semester 1",
			"SGPA":           "8.50",
			"Classification": "First Class with Distinction",
		},
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\r\n"), "result.csv", "text/csv"))
	svc.sendMessage(msg)

	got := out.String()
	assert.Contains(t, got, "Subject: [Gradebook] Results published")
	assert.Contains(t, got, `To: "Bob" <bob@example.com>`)
	assert.Contains(t, got, "Content-Type: multipart/mixed; boundary=")
	assert.Contains(t, got, "The results of Semester 1 have been published.")
	assert.Contains(t, got, "<strong>Semester 1</strong>")
	assert.Contains(t, got, "attachment; filename=result.csv")
	assert.Len(t, svc.Sent(), 1)
}

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	tests := []struct {
		name     string
		msg      *core.EmailMessage
		wantSent bool
	}{
		{
			name:     "plain body",
			msg:      &core.EmailMessage{To: []mail.Address{{Address: "a@example.com"}}, BodyStr: "hi"},
			wantSent: true,
		},
		{
			name: "no recipients",
			msg:  &core.EmailMessage{BodyStr: "hi"},
		},
		{
			name: "no content",
			msg:  &core.EmailMessage{To: []mail.Address{{Address: "a@example.com"}}},
		},
		{
			name: "unknown template",
			msg:  &core.EmailMessage{To: []mail.Address{{Address: "a@example.com"}}, TemplateName: "nope"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewConsoleServiceMock(core.NewTestConfig(), newLogger())
			svc.SendMessages(tc.msg)
			assert.Equal(t, tc.wantSent, len(svc.Sent()) == 1)
		})
	}
}
