package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	tests := []struct {
		name     string
		msg      EmailMessage
		wantText []string
		wantHTML []string
		wantErr  string
	}{
		{
			name: "results published",
			msg: EmailMessage{
				TemplateName: "results_published",
				TemplateData: map[string]string{
					"StudentName":    "Bob",
					"ExamName":       "Semester 1",
					"SGPA":           "8.50",
					"Classification": "First Class with Distinction",
				},
				FrontendBaseURL: "http://localhost:3000",
			},
			wantText: []string{"Hello Bob,", "The results of Semester 1 have been published.", "SGPA: 8.50", "http://localhost:3000"},
			wantHTML: []string{"<strong>Semester 1</strong>", "<li>SGPA: 8.50</li>", "http://localhost:3000"},
		},
		{
			name:     "plain body",
			msg:      EmailMessage{BodyStr: "hi"},
			wantText: []string{"hi"},
		},
		{
			name:    "unknown template",
			msg:     EmailMessage{TemplateName: "lol"},
			wantErr: `email template "lol" not found`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			err := msg.Render()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			for _, s := range tt.wantText {
				assert.True(t, strings.Contains(msg.TextContent, s), "text %q missing %q", msg.TextContent, s)
			}
			for _, s := range tt.wantHTML {
				assert.True(t, strings.Contains(msg.HTMLContent, s), "html %q missing %q", msg.HTMLContent, s)
			}
		})
	}
}
