package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"correspondence-archive/handler"
	"correspondence-archive/internal/integrations/email"
	"correspondence-archive/internal/integrations/objectstore"
	"correspondence-archive/internal/integrations/paramstore"
	"correspondence-archive/internal/repository"
	"correspondence-archive/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	recipientsTable := mustEnv("RECIPIENTS_TABLE")
	correspondencesTable := mustEnv("CORRESPONDENCES_TABLE")
	lettersTable := mustEnv("LETTERS_TABLE")
	uploadBucket := mustEnv("UPLOAD_BUCKET")
	paramPrefix := mustEnv("PARAM_PREFIX")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(cfg), recipientsTable, correspondencesTable, lettersTable)
	if err != nil {
		slog.Error("failed to create store client", "err", err)
		os.Exit(1)
	}
	signer, err := objectstore.New(awss3.NewPresignClient(awss3.NewFromConfig(cfg)), uploadBucket)
	if err != nil {
		slog.Error("failed to create object store client", "err", err)
		os.Exit(1)
	}
	sender, err := email.New(awssesv2.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create email client", "err", err)
		os.Exit(1)
	}

	// The allowed origin is read once per cold start; an unset parameter is
	// not fatal, responses fall back to the wildcard origin.
	allowedOrigin, err := ssmClient.GetParameter(ctx, paramPrefix+"/allowed_origin")
	if err != nil {
		slog.Warn("failed to load allowed origin, using wildcard", "err", err)
		allowedOrigin = "*"
	}

	// ---- Services ----
	correspondences, err := usecase.NewCorrespondenceService(store)
	if err != nil {
		slog.Error("failed to create correspondence service", "err", err)
		os.Exit(1)
	}
	recipients, err := usecase.NewRecipientService(store)
	if err != nil {
		slog.Error("failed to create recipient service", "err", err)
		os.Exit(1)
	}
	letters, err := usecase.NewLetterService(signer, sender, ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create letter service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(correspondences, recipients, letters, allowedOrigin)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
