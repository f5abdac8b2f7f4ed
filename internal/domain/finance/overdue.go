package finance

import (
	"strconv"

	"github.com/backoffice/financeiro/internal/domain/shared/valueobject"
)

// IsOverdue reports whether a pending item is overdue: its due date's
// calendar day is strictly before today's. Non-pending items and items with
// a missing or malformed due date are never overdue.
func IsOverdue(pending bool, dueDate, today string) bool {
	if !pending || dueDate == "" {
		return false
	}
	diff, err := valueobject.DiffDays(dueDate, today)
	if err != nil {
		return false
	}
	return diff < 0
}

func installmentLabel(current, total *int) string {
	if current == nil || total == nil {
		return ""
	}
	return strconv.Itoa(*current) + "/" + strconv.Itoa(*total)
}
