package repository

import "repair-service/src/internal/entity"

var transitionMap = map[string][]string{
	entity.OrderStatusPending: {
		entity.OrderStatusClaimed,
		entity.OrderStatusCancelled,
		entity.OrderStatusDeclinedByCustomer,
	},
	entity.OrderStatusClaimed: {
		entity.OrderStatusPending,
		entity.OrderStatusAccepted,
		entity.OrderStatusCancelled,
		entity.OrderStatusDeclinedByCustomer,
	},
	entity.OrderStatusAccepted: {
		entity.OrderStatusInProgress,
		entity.OrderStatusCancelled,
		entity.OrderStatusDeclinedByCustomer,
	},
	entity.OrderStatusInProgress: {
		entity.OrderStatusCompleted,
	},
}

// ValidTransition reports whether from -> to is an allowed status edge.
// COMPLETED, CANCELLED and DECLINED_BY_CUSTOMER are terminal and have no
// outgoing edges.
func ValidTransition(from, to string) bool {
	allowed, ok := transitionMap[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}
