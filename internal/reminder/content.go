package reminder

import (
	"fmt"
	"time"

	"teamtodo-backend/internal/task/domain"
)

type messages struct {
	title      string
	bodyFormat string
	dueLayout  string
}

var catalog = map[string]messages{
	"ja": {title: "タスクの期限が迫っています", bodyFormat: "%s (期限: %s)", dueLayout: "2006/01/02 15:04"},
	"en": {title: "Task due soon", bodyFormat: "%s (due %s)", dueLayout: "Jan 2 15:04"},
}

func messagesFor(locale string) messages {
	if m, ok := catalog[locale]; ok {
		return m
	}
	return catalog["ja"]
}

func (m messages) render(task *domain.Task, due time.Time, loc *time.Location) (string, string) {
	return m.title, fmt.Sprintf(m.bodyFormat, task.Title, due.In(loc).Format(m.dueLayout))
}
