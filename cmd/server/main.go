package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_info/internal/config"
	"bus_info/internal/controllers"
	"bus_info/internal/logger"
	"bus_info/internal/middleware"
	"bus_info/internal/repository"
	"bus_info/internal/routefinder"
	"bus_info/internal/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	// Initialize structured logging to file
	if err := logger.Setup(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("could not set up logging")
	}
	gin.SetMode(cfg.Server.Mode)

	// Connect to the database
	db, err := config.InitDB(cfg.Database, logger.GormLogger(cfg.Log))
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to the database")
	}

	store := repository.New(db, repository.WithSnapshotReads())
	finder := routefinder.NewFinder(store, routefinder.WithLocation(cfg.Search.Location))
	auth := middleware.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := controllers.NewAuthController(store, auth)

	if _, err := users.EnsureAdmin(context.Background(), cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logrus.WithError(err).Fatal("could not create the admin account")
	}

	r := routes.SetupRouter(routes.Deps{
		Auth:        auth,
		Health:      controllers.NewHealthController(store),
		Users:       users,
		Journeys:    controllers.NewJourneyController(finder, store, cfg.Search.DefaultResults, cfg.Server.RequestTimeout),
		Stops:       controllers.NewStopController(store),
		Routes:      controllers.NewRouteController(store),

		Organizations: controllers.NewOrganizationController(store),
		CORSOrigins: cfg.Server.CORSOrigins,
		AccessLog:   logrus.StandardLogger().Out,
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
	}

	go func() {
		logrus.WithField("addr", server.Addr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logrus.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logrus.Info("server stopped")
}
