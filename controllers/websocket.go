package controllers

import (
	"context"

	"academy_go/middleware"
	"academy_go/services"
	"academy_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	log "github.com/sirupsen/logrus"
)

type WebSocketController struct {
	hub      *websocket.Hub
	sessions middleware.Authorizer
}

func NewWebSocketController(hub *websocket.Hub, sessions middleware.Authorizer) *WebSocketController {
	return &WebSocketController{hub: hub, sessions: sessions}
}

// Upgrade rejects plain HTTP requests on the websocket route.
// Browsers cannot set headers on an upgrade, so ?token= is accepted here only.
func (wsc *WebSocketController) Upgrade(c *fiber.Ctx) error {
	if !fiberws.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("ws_token", upgradeToken(c))
	return c.Next()
}

func upgradeToken(c *fiber.Ctx) string {
	if token := middleware.BearerToken(c); token != "" {
		return token
	}
	return c.Query("token")
}

// WebSocketHandler authorizes the session token and attaches the
// connection to the hub. Only administrators receive the live feed.
func (wsc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		token, _ := c.Locals("ws_token").(string)
		p, err := wsc.sessions.Authorize(context.Background(), token, services.CapViewAdminFeed)
		if err != nil {
			log.WithError(err).Warn("websocket connection rejected")
			_ = c.WriteMessage(fiberws.CloseMessage, fiberws.FormatCloseMessage(fiberws.ClosePolicyViolation, string(services.KindOf(err))))
			_ = c.Close()
			return
		}

		log.WithFields(log.Fields{"principal": p.ID, "role": p.Role}).Info("websocket connection established")
		wsc.hub.ServeFiberWS(c, p.ID, string(p.Role))
	})
}

// GetWebSocketStats returns connection statistics.
func (wsc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wsc.hub.GetClientCount(),
		"status":            "active",
	})
}
