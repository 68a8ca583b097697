package scheduler

import (
	"container/heap"

	"github.com/KasumiMercury/primind-task-reminder/internal/domain"
)

// PriorityQueue orders the tasks of a single category, most important first.
type PriorityQueue struct {
	items    []*PriorityItem
	category domain.Category
}

func NewPriorityQueue(category domain.Category) *PriorityQueue {
	return &PriorityQueue{
		items:    make([]*PriorityItem, 0),
		category: category,
	}
}

func (pq *PriorityQueue) Len() int {
	return len(pq.items)
}

func (pq *PriorityQueue) Less(i, j int) bool {
	a, b := &pq.items[i].Task, &pq.items[j].Task

	switch pq.category {
	case domain.CategoryOverdue, domain.CategoryUrgent:
		// Most overdue first for overdue, soonest due first for urgent.
		// Both reduce to earliest due first; tasks without a due date go last.
		if a.HasDue() != b.HasDue() {
			return a.HasDue()
		}
		if a.HasDue() && !a.DueAt().Equal(b.DueAt()) {
			return a.DueAt().Before(b.DueAt())
		}
	default:
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.After(b.LastModified)
		}
	}

	return a.ID < b.ID
}

func (pq *PriorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].Index = i
	pq.items[j].Index = j
}

func (pq *PriorityQueue) Push(x any) {
	item := x.(*PriorityItem)
	item.Index = len(pq.items)
	pq.items = append(pq.items, item)
}

func (pq *PriorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	pq.items = old[0 : n-1]
	return item
}

func (pq *PriorityQueue) Category() domain.Category {
	return pq.category
}

// Drain pops every item in priority order.
func (pq *PriorityQueue) Drain() []*PriorityItem {
	out := make([]*PriorityItem, 0, pq.Len())
	for pq.Len() > 0 {
		out = append(out, heap.Pop(pq).(*PriorityItem))
	}
	return out
}
