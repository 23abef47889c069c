//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/varad-more/Voyagent/internal/bootstrap"
	"github.com/varad-more/Voyagent/internal/domain/session"
	"github.com/varad-more/Voyagent/internal/infra/config"
	httpiface "github.com/varad-more/Voyagent/internal/interface/http"
	"github.com/varad-more/Voyagent/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSessionConfig,
		provideShareConfig,
		providePlannerClient,
		providePlannerGateway,
		provideDocumentStore,
		provideHistoryRepository,
		session.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
