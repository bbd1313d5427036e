// @title TestLab 后端 API
// @version 1.0
// @description 软件测试课程实时练习平台的后端服务器。

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"
	"path/filepath"

	"testlab_backend/internal/app"
	"testlab_backend/internal/config"
	"testlab_backend/pkg/configwatcher"
	"testlab_backend/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 配置热更新
	go configwatcher.WatchConfig(filepath.Join(*configDir, "config.yaml"), application.OnConfigReload)

	application.Run()
}
