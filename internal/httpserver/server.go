// Package httpserver собирает HTTP-шлюз маркетплейса: маршруты,
// миддлвари и режим работы gin.
package httpserver

import (
	"github.com/gin-gonic/gin"

	"skillswap.ru/backend/internal/config"
	"skillswap.ru/backend/internal/features/accounts"
	"skillswap.ru/backend/internal/httpserver/handlers"
	"skillswap.ru/backend/internal/httpserver/middleware"
)

// NewRouter собирает gin-роутер со всеми маршрутами API.
//
// Публичные: регистрация, вход, чтение пользователей и каталога навыков.
// Остальное — только с валидным Bearer-токеном.
func NewRouter(
	cfg *config.Config,
	tokens *accounts.TokenManager,
	limiter *middleware.RateLimiter,
	accountsHandler *handlers.AccountsHandler,
	skillsHandler *handlers.SkillsHandler,
	swapsHandler *handlers.SwapsHandler,
) *gin.Engine {
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())

	api := r.Group("/api")

	// --- Публичные маршруты: лимит считается по IP ---
	public := api.Group("")
	public.Use(limiter.Middleware())

	public.POST("/register", accountsHandler.Register)
	public.POST("/login", accountsHandler.Login)
	public.GET("/users", accountsHandler.List)
	public.GET("/users/:id", accountsHandler.Get)
	public.GET("/skills", skillsHandler.List)
	public.GET("/skills/:id", skillsHandler.Get)

	// --- Требуют аутентификации: лимитер стоит после Auth,
	// поэтому считает по ID пользователя, а не по общему IP ---
	auth := api.Group("")
	auth.Use(middleware.Auth(tokens))
	auth.Use(limiter.Middleware())

	auth.GET("/me", accountsHandler.Me)
	auth.PATCH("/me", accountsHandler.UpdateMe)

	auth.POST("/skills", skillsHandler.Create)
	auth.PUT("/skills/:id", skillsHandler.Update)
	auth.DELETE("/skills/:id", skillsHandler.Delete)

	auth.GET("/swaps", swapsHandler.List)
	auth.POST("/swaps", swapsHandler.Create)
	auth.GET("/swaps/:id", swapsHandler.Get)
	auth.PATCH("/swaps/:id", swapsHandler.UpdateStatus)

	return r
}
