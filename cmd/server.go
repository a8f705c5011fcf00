package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/curasys/fhir-gateway/fhirstore"
	"github.com/curasys/fhir-gateway/healthcheck"
	"github.com/curasys/fhir-gateway/lib/auth"
	"github.com/curasys/fhir-gateway/lib/httpserv"
	"github.com/curasys/fhir-gateway/patient"
	"github.com/curasys/fhir-gateway/user"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Start(config Config) error {
	zerolog.SetGlobalLevel(config.LogLevel)

	// Set up dependencies
	httpHandler := http.NewServeMux()
	store := fhirstore.New(config.FHIR.ParseURL(), http.DefaultClient)

	userRepo, err := newUserRepository(config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to user store: %w", err)
	}
	userService := user.NewService(userRepo, []byte(config.Auth.SigningKey), config.Auth.Issuer)
	authMiddleware := auth.Middleware{Verifier: userService}
	patientService := patient.New(store, config.FHIR.SearchTimeout)

	// Register services
	services := []Service{
		healthcheck.New(),
		user.NewHandler(userService),
		patient.NewHandler(patientService, authMiddleware),
	}
	for _, service := range services {
		service.RegisterHandlers(httpHandler)
	}

	// Start HTTP server
	err = http.ListenAndServe(config.Public.Address, httpserv.RequestLogger(httpHandler))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func newUserRepository(config DatabaseConfig) (user.Repository, error) {
	if config.URL == "" {
		log.Warn().Msg("No database configured, user accounts are kept in memory")
		return user.NewInMemoryRepository(), nil
	}
	pool, err := pgxpool.New(context.Background(), config.URL)
	if err != nil {
		return nil, err
	}
	return user.NewPostgresRepository(pool), nil
}

type Service interface {
	RegisterHandlers(mux *http.ServeMux)
}
