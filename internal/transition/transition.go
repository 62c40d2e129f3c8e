package transition

import "github.com/euromart/storefront-notify/internal/orders"

// Transition records a status change on one order.
type Transition struct {
	From orders.Status
	To   orders.Status
}

// Detect compares old and new status and returns the transition, or nil when
// the status did not change. Comparison is strict string equality over the
// closed status set; no status graph is enforced and any status may follow
// any other, including backwards moves like delivered -> pending.
func Detect(oldStatus, newStatus orders.Status) *Transition {
	if oldStatus == newStatus {
		return nil
	}
	return &Transition{From: oldStatus, To: newStatus}
}
