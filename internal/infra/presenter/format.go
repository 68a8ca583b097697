package presenter

import (
	"strings"
	"unicode/utf8"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

const (
	titleLimit     = 45
	titleSeparator = ": "
	ellipsis       = "..."

	noDueText      = "Не указана"
	noAssigneeText = "Не назначен"
)

var titlePrefixes = map[domain.Category]string{
	domain.CategoryOverdue: "🔴 ПРОСРОЧЕНО",
	domain.CategoryUrgent:  "🟡 СРОЧНО",
	domain.CategoryCurrent: "📋 ЗАДАЧА",
}

// Message is the rendered text of a popup.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func Format(intent domain.NotificationIntent) Message {
	return Message{
		Title: FormatTitle(intent.Category, intent.Task.Title),
		Body:  FormatBody(intent.Task),
	}
}

// FormatTitle prefixes the task name with its category marker and keeps the
// result within titleLimit runes.
func FormatTitle(category domain.Category, name string) string {
	prefix, ok := titlePrefixes[category]
	if !ok {
		prefix = titlePrefixes[domain.CategoryCurrent]
	}

	room := titleLimit - utf8.RuneCountInString(prefix) - utf8.RuneCountInString(titleSeparator)
	switch {
	case room <= len(ellipsis):
		name = ellipsis
	case utf8.RuneCountInString(name) > room:
		name = string([]rune(name)[:room-len(ellipsis)]) + ellipsis
	}

	return prefix + titleSeparator + name
}

func FormatBody(task domain.Task) string {
	due := noDueText
	if task.HasDue() {
		due = task.Due.Format("02.01.2006")
		if task.DueHasTime {
			due += task.Due.Format(" 15:04")
		}
	}

	assignees := noAssigneeText
	if len(task.Assignees) > 0 {
		assignees = strings.Join(task.Assignees, ", ")
	}

	return "📅 " + due + "\n👤 " + assignees
}
