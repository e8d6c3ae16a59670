package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	pkgcmd "github.com/haldesk/haldesk/pkg/cmd"
	"github.com/haldesk/haldesk/pkg/log"
	"github.com/haldesk/haldesk/pkg/notify/email"
	"github.com/haldesk/haldesk/pkg/notify/telegram"
	"github.com/haldesk/haldesk/pkg/otelhelper"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "haldesk-api",
		Usage:                 "Run the ticket workflow engine API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (postgres://... or memory://)",
				Value:   "memory://",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "cache-url",
				Usage:   "Optional Redis URL for the definition cache",
				Sources: cli.EnvVars("CACHE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "telegram-token",
				Usage:   "Telegram bot token for send_telegram actions",
				Sources: cli.EnvVars("TELEGRAM_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "smtp-addr",
				Usage:   "SMTP server address for send_email actions",
				Sources: cli.EnvVars("SMTP_ADDR"),
			},
			&cli.StringFlag{
				Name:    "smtp-from",
				Usage:   "Sender address for send_email actions",
				Sources: cli.EnvVars("SMTP_FROM"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Enable OpenTelemetry tracing",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Haldesk API")

			store := pkgcmd.NewPersistence(ctx, logger, command.String("database-url"), command.String("cache-url"))

			defer func() {
				err := store.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := pkgcmd.NewEventBus(command.String("event-bus"), logger)

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			notifiers := pkgcmd.Notifiers{}

			if token := command.String("telegram-token"); token != "" {
				notifier, err := telegram.New(token, logger)
				if err != nil {
					return err
				}

				notifiers.Telegram = notifier
			}

			if addr := command.String("smtp-addr"); addr != "" {
				notifiers.Email = email.New(addr, command.String("smtp-from"), nil, logger)
			}

			registry := pkgcmd.NewRegistry(logger, store, eventBus, notifiers)

			var tracer trace.Tracer

			if command.Bool("tracing") {
				var err error

				tracer, err = otelhelper.NewTracer(ctx, "haldesk-api")
				if err != nil {
					return err
				}
			}

			api := NewAPI(logger, store, registry, eventBus, tracer)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
