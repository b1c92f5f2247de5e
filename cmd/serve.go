// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/canonical/provisioning-service/internal/authorization"
	"github.com/canonical/provisioning-service/internal/config"
	"github.com/canonical/provisioning-service/internal/db"
	"github.com/canonical/provisioning-service/internal/identity"
	"github.com/canonical/provisioning-service/internal/kratos"
	"github.com/canonical/provisioning-service/internal/logging"
	"github.com/canonical/provisioning-service/internal/mail"
	"github.com/canonical/provisioning-service/internal/monitoring"
	"github.com/canonical/provisioning-service/internal/monitoring/prometheus"
	"github.com/canonical/provisioning-service/internal/notify"
	"github.com/canonical/provisioning-service/internal/storage"
	"github.com/canonical/provisioning-service/internal/tracing"
	"github.com/canonical/provisioning-service/pkg/authentication"
	"github.com/canonical/provisioning-service/pkg/identities"
	"github.com/canonical/provisioning-service/pkg/provisioning"
	"github.com/canonical/provisioning-service/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "serve starts the web server",
	Long:  `Launch the web application, list of environment variables is available in the readme`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newMailer(specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (provisioning.MailerInterface, error) {
	if specs.SMTPHost == "" {
		logger.Info("SMTP host not configured, invitation emails will only be logged")
		return mail.NewLogMailer(tracer, logger)
	}

	return mail.NewMailer(
		mail.Config{
			Host:     specs.SMTPHost,
			Port:     specs.SMTPPort,
			Username: specs.SMTPUsername,
			Password: specs.SMTPPassword,
			From:     specs.SMTPFrom,
			Insecure: specs.SMTPInsecure,
		},
		tracer,
		monitor,
		logger,
	)
}

func newCallerMiddleware(ctx context.Context, specs *config.EnvSpec, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (func(http.Handler) http.Handler, error) {
	if !specs.AuthenticationEnabled {
		logger.Info("Authentication is disabled, trusting the identity header")
		return identity.NewMiddleware(tracer, monitor, logger).HTTPMiddleware, nil
	}

	verifier, err := authentication.NewJWTAuthenticator(
		ctx,
		specs.JWTIssuer,
		specs.JWTJWKSURL,
		specs.JWTAllowedSubjects,
		specs.JWTRequiredScope,
		tracer,
		monitor,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT authenticator: %w", err)
	}

	logger.Info("Authentication is enabled")
	return authentication.NewMiddleware(verifier, tracer, monitor, logger).Optional(), nil
}

func serve() error {
	specs := new(config.EnvSpec)
	if err := envconfig.Process("", specs); err != nil {
		panic(fmt.Errorf("issues with environment sourcing: %s", err))
	}

	logger := logging.NewLogger(specs.LogLevel)
	logger.Debugf("env vars: %v", specs)
	defer logger.Sync()

	monitor := prometheus.NewMonitor("provisioning-service", logger)
	tracer := tracing.NewTracer(tracing.NewConfig(specs.TracingEnabled, specs.OtelGRPCEndpoint, specs.OtelHTTPEndpoint, logger))

	dbConfig := db.Config{
		DSN:             specs.DSN,
		MaxConns:        specs.DBMaxConns,
		MinConns:        specs.DBMinConns,
		MaxConnLifetime: specs.DBMaxConnLifetime,
		MaxConnIdleTime: specs.DBMaxConnIdleTime,
		TracingEnabled:  specs.TracingEnabled,
	}
	dbClient, err := db.NewDBClient(dbConfig, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create database client: %v", err)
	}
	defer dbClient.Close()
	s := storage.NewStorage(dbClient, tracer, monitor, logger)

	authorizer := authorization.NewAuthorizer(s, tracer, monitor, logger)

	kratosClient := kratos.NewClient(
		specs.KratosAdminURL,
		tracer,
		monitor,
		logger,
	)

	mailer, err := newMailer(specs, tracer, monitor, logger)
	if err != nil {
		return fmt.Errorf("failed to create mailer: %v", err)
	}

	dispatcher := notify.NewDispatcher(specs.NotificationTimeout, tracer, logger)

	provisioningService := provisioning.NewService(
		provisioning.Config{
			PublicURL:          specs.PublicURL,
			InvitationLifetime: specs.InvitationLifetime,
		},
		s,
		authorizer,
		kratosClient,
		mailer,
		dispatcher,
		tracer,
		monitor,
		logger,
	)

	identitiesService := identities.NewService(
		authorizer,
		kratosClient,
		tracer,
		monitor,
		logger,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	caller, err := newCallerMiddleware(ctx, specs, tracer, monitor, logger)
	if err != nil {
		return err
	}

	limiter := web.NewRateLimiter(float64(specs.AcceptRateLimit), specs.AcceptRateBurst, logger)
	go limiter.Run(ctx)

	router := web.NewRouter(
		web.RouterConfig{
			Provisioning:  provisioningService,
			Identities:    identitiesService,
			Caller:        caller,
			AcceptLimiter: limiter,
			DB:            dbClient,
			CORSOrigins:   specs.CORSAllowedOrigins,
		},
		tracer,
		monitor,
		logger,
	)
	logger.Infof("Starting HTTP server on port %v", specs.Port)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%v", specs.Port),
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      router,
	}

	var serverError error
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Security().SystemStartup()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError = fmt.Errorf("server error: %w", err)
			c <- os.Interrupt
		}
	}()

	<-c
	stop()

	// Create a deadline to wait for.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Security().SystemShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverError = fmt.Errorf("server shutdown error: %w", err)
	}

	// pending notifications get the remainder of the shutdown deadline
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Errorf("notifications still pending at shutdown: %v", err)
	}

	return serverError
}
