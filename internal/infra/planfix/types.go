package planfix

import "encoding/json"

const (
	resultFail = "fail"

	roleTypeAssignee = 2
	roleTypeAssigner = 3
	roleTypeAuditor  = 4

	taskFields = "id,name,description,endDateTime,startDateTime,status,priority,assignees,participants,auditors,assigner,overdue"
)

var closedStatuses = []string{"Выполненная", "Отменена", "Закрыта", "Завершенная"}

type TaskListRequest struct {
	Offset   int          `json:"offset"`
	PageSize int          `json:"pageSize"`
	FilterID int          `json:"filterId,omitempty"`
	Filters  []TaskFilter `json:"filters,omitempty"`
	Fields   string       `json:"fields"`
}

type TaskFilter struct {
	Type     int    `json:"type"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

type TaskListResponse struct {
	Result string         `json:"result"`
	Error  string         `json:"error,omitempty"`
	Tasks  []TaskResponse `json:"tasks"`
}

type TaskResponse struct {
	ID            json.RawMessage `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Status        *StatusResponse `json:"status,omitempty"`
	Priority      string          `json:"priority,omitempty"`
	Overdue       bool            `json:"overdue"`
	EndDateTime   *DateTime       `json:"endDateTime,omitempty"`
	StartDateTime *DateTime       `json:"startDateTime,omitempty"`
	Assignees     *PeopleResponse `json:"assignees,omitempty"`
	Participants  *PeopleResponse `json:"participants,omitempty"`
	Auditors      *PeopleResponse `json:"auditors,omitempty"`
	Assigner      *PersonResponse `json:"assigner,omitempty"`
}

type StatusResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type PeopleResponse struct {
	Users []PersonResponse `json:"users"`
}

type PersonResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DateTime is a Planfix date object. Any subset of the fields may be set.
type DateTime struct {
	Date               string `json:"date,omitempty"`
	Time               string `json:"time,omitempty"`
	DateTime           string `json:"datetime,omitempty"`
	DateTimeUTCSeconds string `json:"dateTimeUtcSeconds,omitempty"`
}
