package app

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/db"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/handlers"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/services"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Run() {
	if err := utils.LoadEnv(); err != nil {
		log.Println("Warning: .env file not found")
	}

	connString := utils.GetEnv("DATABASE_URL", "")
	if connString == "" {
		connString = "postgres://" + utils.GetEnv("POSTGRES_USER", "postgres") + ":" +
			utils.GetEnv("POSTGRES_PASSWORD", "postgres") + "@" +
			utils.GetEnv("POSTGRES_HOST", "localhost") + ":" +
			utils.GetEnv("POSTGRES_PORT", "5432") + "/" +
			utils.GetEnv("POSTGRES_DB", "tripdb") + "?sslmode=disable"
	}

	if err := db.InitDB(connString); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	userService := services.NewUserService()
	tripService := services.NewTripService()

	app := fiber.New()

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")

	api.Post("/register", func(c *fiber.Ctx) error {
		var req models.RegisterRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		user, err := userService.Register(c.Context(), req)
		if err != nil {
			if errors.Is(err, services.ErrUserExists) {
				return c.Status(400).JSON(fiber.Map{"error": "username already exists"})
			}
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(user)
	})

	api.Post("/login", func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		res, err := userService.Login(c.Context(), req)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	protected := api.Group("/")
	protected.Use(handlers.AuthMiddleware)

	// Create (or fetch) the collaboration room for a trip. The share
	// code in the response is what other participants join with.
	protected.Post("/rooms", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req models.CreateRoomRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
		}
		if req.TripID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "trip_id required"})
		}

		res, err := tripService.CreateRoom(c.Context(), req.TripID, userID)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(res)
	})

	// Resolve a share code before connecting.
	protected.Get("/rooms/:share_code", func(c *fiber.Ctx) error {
		room, err := tripService.RoomByShareCode(c.Context(), c.Params("share_code"))
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "room not found"})
		}
		return c.JSON(room)
	})

	// Delete a room; creator only. Live members get room_deleted.
	protected.Delete("/rooms/:room_id", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		roomID := c.Params("room_id")

		room, err := tripService.Room(c.Context(), roomID)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "room not found"})
		}
		if room.CreatorID != userID {
			return c.Status(403).JSON(fiber.Map{"error": "only the room creator can delete it"})
		}
		if err := tripService.DeleteRoom(c.Context(), roomID); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		handlers.Manager.Broadcast(roomID, models.Frame{
			Type:         models.FrameRoomDeleted,
			RoomID:       roomID,
			ErrorMessage: "room deleted by creator",
		}, "")
		return c.JSON(fiber.Map{"deleted": true})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Middleware order matters: the upgrade check runs before auth so
	// plain GETs fail fast, and auth runs before the handler.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthMiddleware)
	app.Get("/ws", handlers.WebSocketHandler(tripService))

	port := utils.GetEnv("PORT", "3001")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Println("Gracefully shutting down...")
	handlers.Manager.BroadcastAll(models.Frame{Type: models.FrameServerShutdown})
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}
