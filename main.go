// @title CodeMentor 后端 API
// @version 1.0
// @description 自适应编程练习平台的后端服务：判分、经验进阶与等级评定。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"

	"code_mentor_backend/internal/app"
	"code_mentor_backend/internal/config"
	"code_mentor_backend/pkg/configwatcher"
	"code_mentor_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 配置热更新：引擎权重等参数改动需要重启才生效，先记日志提醒
	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		logger.Log.Info("config file changed, restart to apply engine parameters",
			zap.Any("engine", newCfg.(*config.Config).Engine))
	})

	application.Run()
}
