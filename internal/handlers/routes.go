package handlers

import (
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/auth"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/httpx"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Router holds everything needed to mount the HTTP surface on an app.
type Router struct {
	Auth      *AuthHandler
	Groups    *GroupHandler
	Messages  *MessageHandler
	Education *EducationHandler
	Tutor     *TutorHandler
	Media     *MediaHandler
	WebSocket *WebSocketHandler

	Verifier       auth.Verifier
	Policy         *auth.Policy
	AllowedOrigins []string
	// LimiterStorage backs the rate limiters; nil keeps counters in memory.
	LimiterStorage fiber.Storage
	Logger         *zap.Logger
}

func (r *Router) Register(app *fiber.App) {
	requireAuth := middleware.AuthRequired(r.Verifier, r.Policy, r.Logger)

	api := app.Group("/api", middleware.OriginAllowed(r.AllowedOrigins))

	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", r.limit(20, time.Minute, "auth"), r.Auth.SignUp)
	authRoutes.Post("/signin", r.limit(20, time.Minute, "auth"), r.Auth.SignIn)
	authRoutes.Get("/me", requireAuth, r.Auth.Me)
	authRoutes.Post("/signout", requireAuth, r.Auth.SignOut)

	groups := api.Group("/groups", requireAuth)
	groups.Get("/", r.Groups.ListGroups)
	groups.Post("/", r.Groups.CreateGroup)
	groups.Get("/mine", r.Groups.GetMyGroups)
	groups.Get("/:id", r.Groups.GetGroup)
	groups.Post("/:id/join", r.Groups.JoinGroup)
	groups.Post("/:id/leave", r.Groups.LeaveGroup)
	groups.Get("/:id/rooms", r.Groups.GetRooms)
	groups.Get("/:id/members", r.Groups.GetGroupMembers)
	groups.Get("/:id/rooms/:room/messages", r.Messages.GetMessages)
	groups.Post("/:id/rooms/:room/messages", r.Messages.SendMessage)

	messages := api.Group("/messages", requireAuth)
	messages.Post("/:id/reactions", r.Messages.ToggleReaction)
	messages.Post("/:id/read", r.Messages.MarkRead)

	education := api.Group("/education-level", requireAuth)
	education.Get("/", r.Education.GetLevel)
	education.Post("/", r.Education.SetLevel)

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	admin.Put("/users/:userId/education-level", r.Education.AdminSetLevel)

	tutor := api.Group("/ai", requireAuth)
	tutor.Post("/chat", r.limit(30, time.Minute, "ai"), r.Tutor.Chat)
	tutor.Get("/history", r.Tutor.History)

	api.Post("/attachments", requireAuth, r.limit(10, 10*time.Minute, "attachments"), r.Media.Upload)
	// Attachment keys are unguessable; media is served without auth so that
	// file_url works in plain <img> tags.
	api.Get("/media/*", r.Media.GetMedia)

	app.Use("/ws", middleware.OriginAllowed(r.AllowedOrigins), requireAuth, r.WebSocket.Upgrade)
	app.Get("/ws", websocket.New(r.WebSocket.HandleWebSocket))
}

// limit rate-limits per authenticated user, falling back to the client IP.
func (r *Router) limit(maxRequests int, window time.Duration, bucket string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		Storage:    r.LimiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if p, err := httpx.Principal(c); err == nil {
				return bucket + ":" + p.ID
			}
			return bucket + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return httpx.Error(c, fiber.StatusTooManyRequests, "rate_limited", "Too many requests, please slow down")
		},
	})
}
