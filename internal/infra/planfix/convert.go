package planfix

import (
	"bytes"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// convert maps API records to domain tasks. Closed tasks are dropped.
// Records whose id cannot be parsed keep an empty ID so the caller can
// count and drop them as invalid.
func (c *Client) convert(raw []TaskResponse, queriedRole *domain.Role) []domain.Task {
	tasks := make([]domain.Task, 0, len(raw))
	closed := 0

	for i := range raw {
		r := &raw[i]

		if r.Status != nil && isClosedStatus(r.Status.Name) {
			closed++
			continue
		}

		id, ok := parseTaskID(r.ID)
		if !ok {
			slog.Warn("planfix task has unparsable id",
				slog.String("raw_id", string(r.ID)),
				slog.String("name", r.Name),
			)
		}

		task := domain.Task{
			ID:          id,
			Title:       r.Name,
			Priority:    strings.EqualFold(r.Priority, "urgent"),
			OverdueFlag: r.Overdue,
			Roles:       c.rolesOf(r),
			Assignees:   namesOf(r.Assignees),
		}
		if r.Status != nil {
			task.Status = r.Status.Name
		}
		if queriedRole != nil {
			task.Roles = mergeRoles(task.Roles, []domain.Role{*queriedRole})
		}
		if due, hasTime, ok := ParseDateTime(r.EndDateTime, c.loc); ok {
			task.Due = due
			task.DueHasTime = hasTime
		}
		if start, _, ok := ParseDateTime(r.StartDateTime, c.loc); ok {
			task.LastModified = start
		}

		tasks = append(tasks, task)
	}

	if closed > 0 {
		slog.Debug("dropped closed tasks",
			slog.Int("closed_count", closed),
		)
	}

	return tasks
}

func (c *Client) rolesOf(r *TaskResponse) []domain.Role {
	if c.userID == "" {
		return nil
	}
	me := "user:" + c.userID

	var roles []domain.Role
	if r.Assignees != nil && containsUser(r.Assignees.Users, me) {
		roles = append(roles, domain.RoleAssignee)
	}
	if r.Assigner != nil && r.Assigner.ID == me {
		roles = append(roles, domain.RoleAssigner)
	}
	if (r.Auditors != nil && containsUser(r.Auditors.Users, me)) ||
		(r.Participants != nil && containsUser(r.Participants.Users, me)) {
		roles = append(roles, domain.RoleAuditor)
	}
	return roles
}

func parseTaskID(raw []byte) (string, bool) {
	s := string(bytes.Trim(bytes.TrimSpace(raw), `"`))
	if s == "" || s == "null" {
		return "", false
	}
	if _, err := strconv.ParseUint(s, 10, 64); err != nil {
		return "", false
	}
	return s, true
}

func isClosedStatus(name string) bool {
	return slices.Contains(closedStatuses, name)
}

func roleFor(roleType int) *domain.Role {
	var r domain.Role
	switch roleType {
	case roleTypeAssignee:
		r = domain.RoleAssignee
	case roleTypeAssigner:
		r = domain.RoleAssigner
	case roleTypeAuditor:
		r = domain.RoleAuditor
	default:
		return nil
	}
	return &r
}

func mergeRoles(a, b []domain.Role) []domain.Role {
	out := slices.Clone(a)
	for _, r := range b {
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func containsUser(users []PersonResponse, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func namesOf(p *PeopleResponse) []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Users))
	for _, u := range p.Users {
		name := u.Name
		if name == "" {
			name = "ID:" + u.ID
		}
		names = append(names, name)
	}
	return names
}
