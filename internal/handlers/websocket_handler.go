package handlers

import (
	"context"
	"os"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/handlers/ws"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	members  ws.MemberLister
	receipts ws.ReceiptWriter
	logger   *zap.Logger
	debug    bool
}

func NewWebSocketHandler(hub *ws.Hub, members ws.MemberLister, receipts ws.ReceiptWriter, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketHandler{
		hub:      hub,
		members:  members,
		receipts: receipts,
		logger:   logger,
		debug:    os.Getenv("WS_DEBUG") == "true",
	}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	principal, ok := c.Locals(httpx.LocalPrincipal).(*auth.Principal)
	if !ok || principal == nil {
		_ = c.Close()
		return
	}
	userID := principal.ID

	baseCtx := context.Background()
	if rid, ok := c.Locals("requestid").(string); ok {
		baseCtx = logging.WithRequestID(baseCtx, rid)
	}

	// Clients that can inflate gzip frames opt in via query param or header.
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	c.SetReadLimit(ws.MaxInboundFrame)
	client := h.hub.Register(baseCtx, userID, c, supportsGzip)
	defer h.hub.Unregister(baseCtx, client)

	c.SetPongHandler(func(string) error {
		h.hub.Pong(baseCtx, client)
		return nil
	})

	logger := h.logger.With(zap.String("user_id", userID), zap.String("conn_id", client.ID))
	ctx := &ws.MessageContext{
		Ctx:      baseCtx,
		UserID:   userID,
		Client:   client,
		Hub:      h.hub,
		Members:  h.members,
		Receipts: h.receipts,
	}

	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		if h.debug {
			logger.Debug("ws_recv", zap.Int("frame_type", messageType), zap.Int("size", len(messageBytes)))
		}

		if messageType == websocket.BinaryMessage {
			decompressed, err := ws.DecompressMessage(messageBytes)
			if err != nil {
				_ = ws.SendError(ctx, "decompression_failed", "Failed to decompress message", err.Error())
				continue
			}
			messageBytes = decompressed
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			_ = ws.SendError(ctx, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			logger.Debug("ws message rejected", zap.String("type", msg.GetType()), zap.Error(err))
			_ = ws.SendError(ctx, "processing_failed", "Failed to process message", err.Error())
		}
	}
}
