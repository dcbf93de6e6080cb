package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/constants"
	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/middleware"
	"github.com/hokamoto/studygroup-api/internal/models"
	"github.com/hokamoto/studygroup-api/internal/repository"
	"github.com/hokamoto/studygroup-api/internal/services"
)

type handlerTestEnv struct {
	db           *gorm.DB
	authService  *services.AuthService
	groupService *services.GroupService
	taskService  *services.TaskService
	userService  *services.UserService
	statsService *services.StatsService
	router       *gin.Engine
}

// setupHandlerTestEnv wires the full route table against an in-memory store.
// Protected routes authenticate via the X-Test-User header instead of the
// session so each request can pick its caller; the session-backed flow is
// covered separately in the auth tests.
func setupHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
	)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db, zap.NewNop())
	statsRepo := repository.NewStatsRepository(db)

	env := &handlerTestEnv{
		db:           db,
		authService:  services.NewAuthService(userRepo),
		groupService: services.NewGroupService(groupRepo, userRepo),
		taskService:  services.NewTaskService(taskRepo, groupRepo),
		userService:  services.NewUserService(userRepo),
		statsService: services.NewStatsService(statsRepo, userRepo),
	}

	authHandler := NewAuthHandler(env.authService)
	groupHandler := NewGroupHandler(env.groupService, env.taskService)
	taskHandler := NewTaskHandler(env.taskService)
	userHandler := NewUserHandler(env.userService)
	statsHandler := NewStatsHandler(env.statsService)

	r := gin.New()
	authMW := env.headerAuth()

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.GET("/me", authMW, authHandler.GetCurrentUser)
		}

		groups := api.Group("/groups")
		groups.Use(authMW)
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

		tasks := api.Group("/tasks")
		tasks.Use(authMW)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		api.GET("/stats", authMW, statsHandler.GetStats)

		users := api.Group("/users")
		users.Use(authMW, middleware.RequireAdmin())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.POST("/:id/suspend", userHandler.SuspendUser)
			users.POST("/:id/unsuspend", userHandler.UnsuspendUser)
		}
	}

	env.router = r
	return env
}

func (e *handlerTestEnv) headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Test-User")
		if raw == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := e.authService.GetUser(id)
		if err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, authz.Actor{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// do performs a request as the given user (nil means anonymous).
func (e *handlerTestEnv) do(t *testing.T, method, path string, body interface{}, as *models.User) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("X-Test-User", strconv.FormatUint(as.ID, 10))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func actorOf(user *models.User) authz.Actor {
	return authz.Actor{UserID: user.ID, Role: user.Role}
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		FullName:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashed",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	body := decodeBody(t, w)
	code, _ := body["code"].(string)
	return code
}

// sessionRouter builds the cookie-session auth flow used only by the tests
// that exercise login and logout end to end.
func sessionRouter(env *handlerTestEnv) *gin.Engine {
	r := gin.New()

	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("studygroup_session", store))

	authHandler := NewAuthHandler(env.authService)
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/logout", authHandler.Logout)
	r.GET("/api/auth/me", middleware.RequireAuth(env.authService), authHandler.GetCurrentUser)

	return r
}

func sessionRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
