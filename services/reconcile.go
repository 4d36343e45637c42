package services

import (
	"tableside/entity"
)

type LifecycleState string

const (
	StateCart       LifecycleState = "cart"
	StatePlaced     LifecycleState = "placed"
	StateAddingMore LifecycleState = "adding_more"
	StateCompleted  LifecycleState = "completed"
)

// TableSnapshot is what the repository currently says about a table.
type TableSnapshot struct {
	TableStatus  string
	ActiveOrders []entity.Order
}

// Resolution tells the session what to do with a snapshot. Heal means the
// snapshot is inconsistent (table available but orders still active) and
// the listed active orders must be auto-cancelled.
type Resolution struct {
	State        LifecycleState
	Heal         bool
	AdoptOrderID uint
	ClearCart    bool
	RetryLookup  bool
}

// Reconcile resolves locally-known lifecycle state against a repository
// snapshot. The snapshot always wins: local state is a cache. Pure; the
// caller applies the resulting actions.
//
// hydrating marks the initial load path, where an empty result may just be
// replication lag and deserves one retry before being trusted.
func Reconcile(prev LifecycleState, snap TableSnapshot, hydrating bool) Resolution {
	if len(snap.ActiveOrders) > 0 {
		if snap.TableStatus == entity.TableAvailable {
			// stale session left orders behind; cancel them and start over
			return Resolution{State: StateCart, Heal: true, ClearCart: true}
		}
		return Resolution{
			State:        StatePlaced,
			AdoptOrderID: mostRecentOrderID(snap.ActiveOrders),
			ClearCart:    true,
		}
	}

	if hydrating && prev == StateCart {
		return Resolution{State: StateCart, RetryLookup: true}
	}
	if prev == StatePlaced || prev == StateAddingMore || prev == StateCompleted {
		return Resolution{State: StateCart, ClearCart: true}
	}
	return Resolution{State: StateCart}
}

func mostRecentOrderID(orders []entity.Order) uint {
	var id uint
	var latest int64
	for i := range orders {
		ts := orders[i].CreatedAt.UnixNano()
		if ts > latest || id == 0 {
			latest = ts
			id = orders[i].ID
		}
	}
	return id
}
