// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"github.com/varad-more/Voyagent/internal/bootstrap"
	"github.com/varad-more/Voyagent/internal/domain/session"
	"github.com/varad-more/Voyagent/internal/infra/config"
	"github.com/varad-more/Voyagent/internal/interface/http"
	"github.com/varad-more/Voyagent/pkg/logger"
)

// Injectors from wire.go:

func initializeApp() (*bootstrap.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	slogLogger := logger.New()
	sessionConfig := provideSessionConfig(configConfig)
	client, err := providePlannerClient(configConfig)
	if err != nil {
		return nil, err
	}
	plannerClient := providePlannerGateway(client)
	store := provideDocumentStore(configConfig, slogLogger)
	historyRepository := provideHistoryRepository(configConfig, slogLogger)
	service := session.NewService(sessionConfig, plannerClient, store, historyRepository, slogLogger)
	shareConfig := provideShareConfig(configConfig)
	handler := http.NewHandler(service, shareConfig, slogLogger)
	server := http.NewRouter(configConfig, handler)
	app := bootstrap.NewApp(configConfig, slogLogger, server)
	return app, nil
}
