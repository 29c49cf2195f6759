// @title 测验管理后端 API
// @version 1.0
// @description 学生测验与AI求助配额管理的后端服务器。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"quiz_admin_backend/internal/app"
	"quiz_admin_backend/internal/config"
	"quiz_admin_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
