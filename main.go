// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"

	"github.com/bankchen1/deiex-admin-sub000/config"
	_ "github.com/bankchen1/deiex-admin-sub000/docs"
	"github.com/bankchen1/deiex-admin-sub000/middleware"
	"github.com/bankchen1/deiex-admin-sub000/mockapi"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var (
	configFile string
	debug      bool
)

// @title           Admin Console Mock API
// @version         1.0
// @description     Fixture-backed admin API for developing the exchange admin console without a backend.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "admin-gateway",
		Short:         "Admin console API gateway and mock backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
			})
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging and request dumps")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCallCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if debug {
		cfg.API.Debug = true
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock admin API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			svc := newMockService(cfg)
			svc.Enable()
			r := setupRouter(cfg, svc)

			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			log.Info().Str("addr", addr).Bool("auth", cfg.Auth.Enabled).Msg("Starting server")
			return r.Run(addr)
		},
	}
}

func newMockService(cfg *config.Config) *mockapi.Service {
	opts := []mockapi.Option{
		mockapi.WithLatency(cfg.Mock.MinLatency, cfg.Mock.MaxLatency),
		mockapi.WithSessions(mockapi.NewSessions(cfg.Mock.TokenTTL, nil)),
	}
	if cfg.Mock.Seed != 0 {
		opts = append(opts, mockapi.WithSeed(cfg.Mock.Seed))
	}
	return mockapi.New(opts...)
}

func setupRouter(cfg *config.Config, svc *mockapi.Service) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// These endpoints remain public
	r.GET("/health", healthCheck)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// Issued mock sessions and the static tokens both authenticate
	r.Any("/api/*path", middleware.BearerAuthMiddleware(cfg, svc.Sessions()), svc.Handler())
	return r
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// @Summary     Health check endpoint
// @Description Get API health status
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse
// @Router      /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(200, HealthResponse{Status: "ok"})
}
