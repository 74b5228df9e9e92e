package main

import (
	"time"

	"github.com/greenmart/storefront/api"
	"github.com/greenmart/storefront/config"
	"github.com/greenmart/storefront/identity"
	"github.com/greenmart/storefront/routes"
	"github.com/greenmart/storefront/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	rdb := utils.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisDB, cfg.RedisPassword)

	deps := routes.Deps{
		API:      api.New(cfg.APIBaseURL, time.Duration(cfg.APITimeoutSec)*time.Second, utils.Sugar),
		Cache:    utils.NewCache(rdb, time.Duration(cfg.CacheTTLSec)*time.Second),
		Identity: identity.NewStore(rdb),
	}

	r := routes.SetupRouter(cfg, deps)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
