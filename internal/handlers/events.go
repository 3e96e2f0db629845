package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nkashyap/taskhub-backend/internal/logger"
	"github.com/nkashyap/taskhub-backend/internal/realtime"
	"github.com/nkashyap/taskhub-backend/internal/requestdata"
)

type EventsHandler struct {
	log *logger.Logger
	hub *realtime.Hub
}

func NewEventsHandler(log *logger.Logger, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{log: log.With("handler", "EventsHandler"), hub: hub}
}

// Stream holds the connection open and delivers room pushes. Each
// connection joins exactly one room: the caller's own user id.
func (eh *EventsHandler) Stream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, ErrorEnvelope{Error: APIError{Message: "missing or invalid token"}})
		return
	}

	client := eh.hub.NewClient(rd.UserID)
	eh.hub.Join(client, rd.UserID.String())
	defer eh.hub.CloseClient(client)

	eh.log.Debug("Realtime stream opened", "user_id", rd.UserID)
	eh.hub.ServeHTTP(c.Writer, c.Request, client)
	eh.log.Debug("Realtime stream closed", "user_id", rd.UserID)
}
