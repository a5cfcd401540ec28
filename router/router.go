package router

import (
	"net/http"

	"flashbill/api"
	"flashbill/config"
	_ "flashbill/docs"
	"flashbill/logger"
	"flashbill/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(logger.GinLogger(), gin.Recovery())
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limit := func(msg string) gin.HandlerFunc {
		return middleware.RateLimit(cfg.RateLimit.MaxAttempts, cfg.RateLimit.Window, msg)
	}

	v1 := r.Group("/api/v1")
	{
		// 认证相关路由（无需登录）
		authHandler := api.NewAuthHandler(cfg)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limit("注册过于频繁，请稍后再试"), authHandler.Register)
			auth.POST("/login", limit("登录尝试过于频繁，请稍后再试"), authHandler.Login)
		}

		// 类别为静态表，无需登录
		v1.GET("/categories", api.NewCategoryHandler().List)

		// 需要 JWT 认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/profile", authHandler.GetProfile)
			authorized.PUT("/auth/password", authHandler.ChangePassword)

			ledgerHandler := api.NewLedgerHandler(cfg)
			authorized.GET("/ledgers", ledgerHandler.List)
			authorized.POST("/ledgers", ledgerHandler.Create)
			authorized.POST("/ledgers/join", limit("邀请码尝试过于频繁，请稍后再试"), ledgerHandler.Join)
			authorized.POST("/ledgers/:id/invite-codes", ledgerHandler.CreateInviteCode)
			authorized.POST("/ledgers/:id/invite-codes/email", ledgerHandler.SendInviteEmail)

			txHandler := api.NewTransactionHandler()
			authorized.POST("/transactions", txHandler.Create)
			authorized.GET("/transactions", txHandler.List)
			authorized.GET("/transactions/summary", txHandler.Summary)
			authorized.GET("/transactions/:uuid", txHandler.Get)

			authorized.GET("/statistics/categories", api.NewStatisticsHandler(cfg).Categories)

			exportHandler := api.NewExportHandler()
			authorized.GET("/export/csv", exportHandler.ExportCSV)
			authorized.GET("/export/excel", exportHandler.ExportExcel)
		}
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
