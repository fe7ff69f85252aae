package main

import (
	"os"

	"github.com/DRSN-tech/shop-backend/internal/app"
	config "github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
)

//	@title						Shop API
//	@version					1.0
//	@description				REST API интернет-магазина: каталог, корзина, заказы.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <token>
func main() {
	bootLog := logger.NewSlogLogger()

	cfg, err := config.Load(bootLog)
	if err != nil {
		bootLog.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	log := logger.NewSlogLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
