package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hokamoto/studygroup-api/internal/config"
	"github.com/hokamoto/studygroup-api/internal/database"
	"github.com/hokamoto/studygroup-api/internal/handlers"
	"github.com/hokamoto/studygroup-api/internal/middleware"
	"github.com/hokamoto/studygroup-api/internal/repository"
	"github.com/hokamoto/studygroup-api/internal/services"
)

func main() {
	cfg := config.Load()

	gin.SetMode(cfg.GinMode)

	var logger *zap.Logger
	var err error
	if cfg.GinMode == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := database.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			logger.Fatal("Failed to add indexes", zap.Error(err))
		}
	}

	r := gin.Default()

	// Session middleware backed by Redis. The session cookie is the opaque
	// credential; RequireAuth resolves it to an actor for everything below.
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,
		"tcp",
		redisAddr,
		"",
		"",
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal("Failed to create Redis store", zap.Error(err))
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("studygroup_session", store))

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db, logger)
	statsRepo := repository.NewStatsRepository(db)

	authService := services.NewAuthService(userRepo)
	groupService := services.NewGroupService(groupRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, groupRepo)
	userService := services.NewUserService(userRepo)
	statsService := services.NewStatsService(statsRepo, userRepo)

	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(groupService, taskService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Study group API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(authService), authHandler.GetCurrentUser)
		}

		// Group routes (protected)
		groups := api.Group("/groups")
		groups.Use(middleware.RequireAuth(authService))
		{
			groups.GET("", groupHandler.ListGroups)
			groups.POST("", groupHandler.CreateGroup)
			groups.GET("/:id", groupHandler.GetGroup)
			groups.PUT("/:id", groupHandler.UpdateGroup)
			groups.DELETE("/:id", groupHandler.DeleteGroup)
			groups.GET("/:id/members", groupHandler.ListMembers)
			groups.GET("/:id/tasks", groupHandler.ListGroupTasks)
			groups.POST("/:id/join", groupHandler.JoinGroup)
			groups.POST("/:id/members", groupHandler.AddMember)
			groups.DELETE("/:id/members/:user_id", groupHandler.RemoveMember)
			groups.POST("/:id/owner", groupHandler.ReassignOwner)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(authService))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Stats (protected)
		api.GET("/stats", middleware.RequireAuth(authService), statsHandler.GetStats)

		// User management (admin only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(authService), middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/suspend", userHandler.SuspendUser)
			users.POST("/:id/unsuspend", userHandler.UnsuspendUser)
		}
	}

	logger.Info("Server starting", zap.String("addr", cfg.ListenAddr))
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
