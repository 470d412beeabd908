package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hosteline/epass-server/internal/api/http/middleware"
	"github.com/hosteline/epass-server/internal/auth"
	"github.com/hosteline/epass-server/internal/notify"
)

type EventsHandler struct {
	hub *notify.Hub
}

func NewEventsHandler(hub *notify.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream subscribes the caller to lifecycle events over SSE. Students only
// see events for their own passes; wardens and guards see everything. A
// dropped connection is fine: the client reconciles by re-fetching passes.
func (h *EventsHandler) Stream(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	events, cancel := h.hub.Subscribe(filterFor(identity))
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("pass", ev)
			return true
		}
	})
}

func filterFor(identity auth.Identity) notify.Filter {
	if identity.Role == auth.RoleStudent {
		ownerID := identity.UserID
		return func(ev notify.Event) bool {
			return ev.OwnerID == ownerID
		}
	}
	return func(notify.Event) bool { return true }
}
