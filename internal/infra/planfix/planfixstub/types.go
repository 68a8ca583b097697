package planfixstub

type SeedTask struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	EndDate   string   `json:"end_date,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Overdue   bool     `json:"overdue,omitempty"`
	Status    string   `json:"status,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
	Assigner  string   `json:"assigner,omitempty"`
	Auditors  []string `json:"auditors,omitempty"`
}

type SeedRequest struct {
	Tasks []SeedTask `json:"tasks"`
}

type FailureRequest struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
