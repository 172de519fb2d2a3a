package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/marketplace-console/internal/core/domain"
)

// NotificationFeed is drained by the UI. *notify.Center satisfies it.
type NotificationFeed interface {
	Drain() []domain.Notification
}

// SessionReader yields the current session. *session.Store satisfies it.
type SessionReader interface {
	Snapshot() domain.Session
}

// NotificationHandler exposes the notification center to the UI.
type NotificationHandler struct {
	feed NotificationFeed
}

func NewNotificationHandler(feed NotificationFeed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// List returns and clears the pending notifications.
//
// @Summary      Drain pending notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {array}   domain.Notification
// @Router       /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.feed.Drain())
}

// SessionHandler reports who is signed in.
type SessionHandler struct {
	sessions SessionReader
}

func NewSessionHandler(sessions SessionReader) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Show reports the session state. The token is never exposed.
//
// @Summary      Show the session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  domain.Session
// @Router       /session [get]
func (h *SessionHandler) Show(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessions.Snapshot())
}
