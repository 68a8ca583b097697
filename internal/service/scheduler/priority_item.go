package scheduler

import "github.com/KasumiMercury/primind-task-reminder/internal/domain"

type PriorityItem struct {
	Task   domain.Task
	Pinned bool
	Index  int
}

func NewPriorityItem(task domain.Task, pinned bool) *PriorityItem {
	return &PriorityItem{
		Task:   task,
		Pinned: pinned,
		Index:  -1,
	}
}
