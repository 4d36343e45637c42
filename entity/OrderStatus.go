package entity

const (
	OrderPlaced    = "placed"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

// ActiveOrderStatuses are the statuses with kitchen work still outstanding.
// A completed-but-unpaid order also counts as active; see Order.IsActive.
var ActiveOrderStatuses = []string{OrderPlaced, OrderConfirmed, OrderPreparing, OrderReady}
