package worker

import (
	"github.com/ticketdesk/ticket-bot/internal/service"
)

// StartLifecycleWorkers registers the ticket lifecycle subscribers. Either
// service may be nil.
func StartLifecycleWorkers(audit *service.AuditService, presence *service.PresenceService) {
	if audit != nil {
		audit.RegisterHandlers()
	}
	if presence != nil {
		presence.RegisterHandlers()
	}
}
