package planfixstub

import (
	"slices"
	"strings"
	"sync"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix"
)

type TaskStorage struct {
	mu          sync.RWMutex
	tasks       []planfix.TaskResponse
	failStatus  int
	failMessage string
	requests    int
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{}
}

func (s *TaskStorage) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	s.failStatus = 0
	s.failMessage = ""
	s.requests = 0
}

func (s *TaskStorage) Add(tasks ...planfix.TaskResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, tasks...)
}

func (s *TaskStorage) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.tasks)
	s.tasks = slices.DeleteFunc(s.tasks, func(t planfix.TaskResponse) bool {
		return strings.Trim(string(t.ID), `"`) == id
	})
	return len(s.tasks) != before
}

// SetFailure makes every following list call answer with status. A zero
// status answers with result "fail" and message. Clear with ClearFailure.
func (s *TaskStorage) SetFailure(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failMessage = message
}

func (s *TaskStorage) ClearFailure() {
	s.SetFailure(0, "")
}

func (s *TaskStorage) Requests() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.requests
}

func (s *TaskStorage) failure() (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failStatus, s.failMessage
}

// List returns one page of the tasks matching filters. A filter matches when
// the task carries the user value in the field for its role type.
func (s *TaskStorage) List(filters []planfix.TaskFilter, offset, pageSize int) []planfix.TaskResponse {
	s.mu.Lock()
	s.requests++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]planfix.TaskResponse, 0, len(s.tasks))
	for _, t := range s.tasks {
		if matchesAll(t, filters) {
			matched = append(matched, t)
		}
	}

	if offset >= len(matched) {
		return []planfix.TaskResponse{}
	}
	end := len(matched)
	if pageSize > 0 && offset+pageSize < end {
		end = offset + pageSize
	}
	return matched[offset:end]
}

func matchesAll(t planfix.TaskResponse, filters []planfix.TaskFilter) bool {
	for _, f := range filters {
		if !matches(t, f) {
			return false
		}
	}
	return true
}

func matches(t planfix.TaskResponse, f planfix.TaskFilter) bool {
	switch f.Type {
	case 2:
		return hasUser(t.Assignees, f.Value)
	case 3:
		return t.Assigner != nil && t.Assigner.ID == f.Value
	case 4:
		return hasUser(t.Auditors, f.Value) || hasUser(t.Participants, f.Value)
	default:
		return true
	}
}

func hasUser(p *planfix.PeopleResponse, id string) bool {
	if p == nil {
		return false
	}
	for _, u := range p.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}
