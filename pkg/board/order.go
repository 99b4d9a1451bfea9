package board

import (
	"monodo/pkg/task"
)

// Orders holds each column's persisted manual arrangement, keyed by
// status.
type Orders map[task.Status][]string

// ReconcileOrder folds the live task-id set into a persisted order: ids
// no longer present are dropped, new ids are appended at the end, and the
// relative order of retained ids is preserved.
func ReconcileOrder(order []string, tasks []task.Task) []string {
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}

	out := make([]string, 0, len(tasks))
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if present[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	for _, t := range tasks {
		if !seen[t.ID] {
			out = append(out, t.ID)
			seen[t.ID] = true
		}
	}
	return out
}

// MoveID moves the given id to index within the order, clamping the index
// to the list bounds. An id not in the list leaves it unchanged.
func MoveID(order []string, id string, index int) []string {
	pos := -1
	for i, v := range order {
		if v == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return order
	}

	out := make([]string, 0, len(order))
	out = append(out, order[:pos]...)
	out = append(out, order[pos+1:]...)
	return insertAt(out, id, index)
}

// insertAt places id at index, appending when index is negative or past
// the end.
func insertAt(order []string, id string, index int) []string {
	if index < 0 || index >= len(order) {
		return append(order, id)
	}
	out := make([]string, 0, len(order)+1)
	out = append(out, order[:index]...)
	out = append(out, id)
	out = append(out, order[index:]...)
	return out
}

func removeID(order []string, id string) []string {
	out := order[:0:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Drag applies a drop of the given task onto the column to, at index
// (negative means the column itself, so the id lands at the end). A
// cross-column drop is a status transition and must pass the validator
// first; when it is rejected no order list is touched and the error is
// returned so the caller can revert the visual move.
func Drag(orders Orders, t task.Task, to task.Status, index int, privileged bool) error {
	from := t.Status
	if from == to {
		orders[to] = MoveID(orders[to], t.ID, index)
		return nil
	}

	if err := task.ValidateTransition(from, to, t.HasActiveTimer(), privileged); err != nil {
		return err
	}

	orders[from] = removeID(orders[from], t.ID)
	orders[to] = insertAt(removeID(orders[to], t.ID), t.ID, index)
	return nil
}
