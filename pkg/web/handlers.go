package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-suntrack/pkg/hub"
)

// handleStatus returns the latest cycle status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleFrame returns the latest annotated robust view as JPEG
func (s *Server) handleFrame(c *fiber.Ctx) error {
	frame := s.Frame()
	if frame == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no frame yet",
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(frame)
}

// handleStop asks the loop to stop
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.RequestStop()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"stopping": true,
	})
}

// handleStatusWS handles WebSocket connections for status updates
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send current status before the hub starts writing
	if err := c.WriteJSON(s.Status()); err != nil {
		return
	}
	if client := hub.NewClient(s.statusHub, c); client != nil {
		client.Run()
	}
}

// handleCameraWS handles WebSocket connections for the camera feed
func (s *Server) handleCameraWS(c *websocket.Conn) {
	if frame := s.Frame(); frame != nil {
		if err := c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return
		}
	}
	if client := hub.NewClient(s.cameraHub, c); client != nil {
		client.Run()
	}
}
