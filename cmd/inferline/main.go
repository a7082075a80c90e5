package main

import (
	"fmt"

	"github.com/Meesho/BharatMLStack/inferline/internal/audit"
	"github.com/Meesho/BharatMLStack/inferline/internal/config"
	"github.com/Meesho/BharatMLStack/inferline/internal/model"
	"github.com/Meesho/BharatMLStack/inferline/internal/pipeline"
	"github.com/Meesho/BharatMLStack/inferline/internal/predcache"
	"github.com/Meesho/BharatMLStack/inferline/internal/server"
	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
	_ "go.uber.org/automaxprocs"
)

var AppConfigs config.AppConfigs

func main() {
	config.InitConfig(&AppConfigs)
	logger.InitLogger(&AppConfigs)
	metrics.InitMetrics(&AppConfigs)

	scorer, err := model.Load(AppConfigs.Configs.ModelPath)
	if err != nil {
		logger.Panic(fmt.Sprintf("Failed to load model artifact from %s", AppConfigs.Configs.ModelPath), err)
	}
	logger.Info(fmt.Sprintf("Model loaded with %d features", scorer.NumFeatures()))

	cache := predcache.New(&AppConfigs)
	audit.InitAuditLogger(&AppConfigs)

	pipe := pipeline.New(pipeline.ConfigFromApp(&AppConfigs), scorer)
	pipe.Start()

	server.InitServer(&AppConfigs, pipe, cache)
}
