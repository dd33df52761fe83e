package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"goblog-api/internal/bootstrap"
	"goblog-api/internal/transport/http/handler"
	"goblog-api/internal/transport/http/middleware"
	"goblog-api/internal/transport/http/response"
	"goblog-api/internal/transport/http/view"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(app.Log), middleware.Metrics())
	router.SetHTMLTemplate(view.Templates())
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeRouteNotFound, "route not found")
	})

	healthHandler := handler.NewHealthHandler(app)
	authHandler := handler.NewAuthHandler(app.AuthService, app.Config.Auth.RevealUnknownEmail)
	blogHandler := handler.NewBlogHandler(app.BlogService)
	userHandler := handler.NewUserHandler(app.UserService)
	homeHandler := handler.NewHomeHandler(app.BlogService, app.Config.App.Name)
	requireAuth := middleware.AuthJWT(app.Guard, app.Log)

	router.GET("/", homeHandler.Index)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.GET("/me", requireAuth, authHandler.Me)

	router.GET("/create_article", requireAuth, homeHandler.CreateArticlePage)
	router.POST("/create_article", requireAuth, blogHandler.CreateArticle)

	blogs := router.Group("/blogs")
	blogs.GET("", blogHandler.List)
	blogs.POST("", requireAuth, blogHandler.Create)
	blogs.POST("/create", requireAuth, blogHandler.Create)
	blogs.GET("/:id", blogHandler.Get)
	blogs.PUT("/:id", requireAuth, blogHandler.Patch)
	blogs.PUT("/:id/edit", requireAuth, blogHandler.Edit)
	blogs.GET("/:id/history", blogHandler.History)

	users := router.Group("/users")
	users.GET("", userHandler.List)
	users.POST("", authHandler.Register)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", requireAuth, userHandler.Update)

	return router
}
