package router

import (
	"github.com/gin-gonic/gin"

	dividendshandler "dividend_dashboard/internal/feature/dividends/transport/handler"
	"dividend_dashboard/internal/platform/http/handler"
	"dividend_dashboard/internal/platform/logger"
)

func NewRouter(dashboard *dividendshandler.DashboardHandler, health *handler.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(logger.Middleware(), logger.Recovery())

	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)
	// 依存先（ストア、Redis）の確認
	r.GET("/readyz", health.Ready)

	// ダッシュボード画面
	r.GET("/", dashboard.Page)
	// 同じビューのJSON
	r.GET("/api/dividends", dashboard.API)

	return r
}
