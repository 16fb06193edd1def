package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/taledb/taledb-go/internal/pkg/application/mockdb"
	"github.com/taledb/taledb-go/internal/pkg/infrastructure/router"
	"github.com/taledb/taledb-go/internal/pkg/presentation/api"
)

const serviceName string = "taledb-mock"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	cfg := loadSeedConfiguration(ctx)

	store, err := newStore(ctx)
	if err != nil {
		log.Error("failed to create document store", "err", err.Error())
		os.Exit(1)
	}

	db := mockdb.New(cfg, store)

	policyPath := env.GetVariableOrDefault(ctx, "MOCKDB_POLICIES", "/opt/taledb/config/authz.rego")
	policies, err := os.Open(policyPath)
	if err != nil {
		log.Error("failed to open authz policies", "path", policyPath, "err", err.Error())
		os.Exit(1)
	}
	defer policies.Close()

	r := router.New(serviceName)

	err = api.RegisterHandlers(ctx, r, policies, db)
	if err != nil {
		log.Error("failed to register handlers", "err", err.Error())
		os.Exit(1)
	}

	port := env.GetVariableOrDefault(ctx, "SERVICE_PORT", "8443")

	log.Info("starting to listen for connections", "port", port)

	err = http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Error("failed to listen for connections", "err", err.Error())
		os.Exit(1)
	}
}

func loadSeedConfiguration(ctx context.Context) *mockdb.Config {
	log := logging.GetFromContext(ctx)

	cfgPath := env.GetVariableOrDefault(ctx, "MOCKDB_CONFIG", "/opt/taledb/config/mockdb.yaml")

	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		log.Warn("no seed configuration found, starting empty", "path", cfgPath)
		return &mockdb.Config{}
	}
	defer cfgFile.Close()

	cfg, err := mockdb.LoadConfiguration(cfgFile)
	if err != nil {
		log.Error("failed to load seed configuration", "err", err.Error())
		os.Exit(1)
	}

	return cfg
}

func newStore(ctx context.Context) (mockdb.DocumentStore, error) {
	if env.GetVariableOrDefault(ctx, "MOCKDB_STORAGE", "memory") != "postgres" {
		return mockdb.NewMemoryStore(), nil
	}

	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "taledb"),
		env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	)

	return mockdb.NewPostgresStore(ctx, connStr)
}
