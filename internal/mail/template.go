package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// CourseMatch is the data rendered into a course-match email.
type CourseMatch struct {
	RecipientName string
	CourseTitle   string
	CategoryName  string
	Score         float64
	Link          string
}

var (
	courseMatchSubject = template.Must(template.New("subject").Parse(`New course matching your expertise: {{.CourseTitle}}`))
	courseMatchBody    = template.Must(template.New("body").Parse(`Hello{{if .RecipientName}} {{.RecipientName}}{{end}},

A new course was posted that matches your teaching profile.

  Course:   {{.CourseTitle}}
{{- if .CategoryName}}
  Category: {{.CategoryName}}
{{- end}}
  Score:    {{printf "%.2f" .Score}}
{{if .Link}}
Open it here: {{.Link}}
{{end}}
You can apply or dismiss it from your notifications.
`))
)

// NewCourseMatchMessage renders the email telling a tutor about a matching course.
func NewCourseMatchMessage(to string, data CourseMatch) (Message, error) {
	var subject, body bytes.Buffer
	if err := courseMatchSubject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("render subject: %w", err)
	}
	if err := courseMatchBody.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render body: %w", err)
	}
	return Message{To: to, Subject: subject.String(), Body: body.String()}, nil
}
