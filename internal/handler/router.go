package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/backend/internal/service"
)

// NewRouter wires every route. Auth endpoints are public; everything under
// the authenticated group requires a live, non-revoked access token.
func NewRouter(
	authSvc *service.AuthService,
	authH *AuthHandler,
	userH *UserHandler,
	roleH *RoleHandler,
	allowedOrigins string,
) *gin.Engine {
	router := gin.Default()
	if allowedOrigins != "" {
		router.Use(CORSMiddleware(strings.Split(allowedOrigins, ","), true))
	}

	router.GET("/", Root)
	router.GET("/ping", Ping)
	router.GET("/api/openapi.json", OpenAPIDoc)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/logout", authH.Logout)
		auth.POST("/logout/all", authH.LogoutAll)
	}

	protected := v1.Group("")
	protected.Use(AuthMiddleware(authSvc))
	{
		protected.GET("/auth/me", authH.Me)
		protected.GET("/users/:id", userH.GetUser)

		roles := protected.Group("/roles")
		{
			roles.POST("", roleH.CreateRole)
			roles.GET("", roleH.ListRoles)
			roles.GET("/users/:user_id", roleH.ListUserRoles)
			roles.GET("/:id", roleH.GetRole)
			roles.DELETE("/:id", roleH.DeleteRole)
			roles.POST("/:id/assign", roleH.AssignRole)
			roles.POST("/:id/remove", roleH.RemoveRole)
		}
	}

	return router
}
