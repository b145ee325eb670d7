// Command lambda serves the relay functions as a single AWS Lambda function
// behind an API Gateway proxy integration.
package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chxlky/webhook-relay/integrations"
	"github.com/chxlky/webhook-relay/internal/config"
	"github.com/chxlky/webhook-relay/internal/logging"
	"github.com/chxlky/webhook-relay/internal/mailrelay"
	"github.com/chxlky/webhook-relay/internal/relocator"
	"go.uber.org/zap"
)

func main() {
	logger, err := logging.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(os.Getenv("RELAY_CONFIG"))
	if err != nil {
		zap.L().Fatal("Error reading config", zap.Error(err))
	}

	trelloClient := integrations.NewTrelloClient(cfg.Trello.BaseURL, cfg.Trello.APIKey, cfg.Trello.APIToken)

	fn := &function{
		relocator: relocator.New(func(key, token string) relocator.Board {
			return trelloClient.WithCredentials(key, token)
		}, logger.Named("relocator")),
		relay:  mailrelay.New(integrations.NewResendSender(cfg.Mail.ResendAPIKey), cfg.Mail.Relay(), logger.Named("mailrelay")),
		trello: cfg.Trello,
		mail:   cfg.Mail,
		logger: logger,
	}

	lambda.Start(fn.Handle)
}
