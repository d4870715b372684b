package worker

import (
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/service"
)

// StartNotificationWorker subscribes the notifier to ticket lifecycle events.
// Delivery is synchronous and in-process; nothing here blocks a mutation.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
