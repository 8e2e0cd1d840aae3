// @title 试卷审核导入 API
// @version 1.0
// @description 试题录入、导入前审核与定稿导入的后端服务。

// @contact.name API支持

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"paper_review_backend/internal/app"
	"paper_review_backend/internal/config"
	"paper_review_backend/pkg/configwatcher"
	"paper_review_backend/pkg/logger"
)

func main() {
	watchConfig := flag.Bool("watch-config", false, "监听配置文件变更并热加载")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watchConfig {
		application.RegisterConfigCallback(func(newCfg *config.Config) {
			logger.Log.Info("config reloaded")
		})
		go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
			if c, ok := newCfg.(*config.Config); ok {
				application.ApplyConfig(c)
			}
		})
	}

	application.Run()
}
