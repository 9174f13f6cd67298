package service

import (
	"sync"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
)

type recordedEvent struct {
	UserID  uint
	Event   string
	OrderID uint
	Status  model.OrderStatus
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) NotifyOrder(userID uint, event string, order *model.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{
		UserID:  userID,
		Event:   event,
		OrderID: order.ID,
		Status:  order.Status,
	})
}

func (n *recordingNotifier) Events() []recordedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]recordedEvent, len(n.events))
	copy(out, n.events)
	return out
}
