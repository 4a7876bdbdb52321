package main

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/config"
	"github.com/tapfinder/tapstations/internal/directory"
	"github.com/tapfinder/tapstations/internal/geocode"
	"github.com/tapfinder/tapstations/internal/handler"
	"github.com/tapfinder/tapstations/internal/metrics"
	"github.com/tapfinder/tapstations/internal/store"
	"github.com/tapfinder/tapstations/pkg/http/client"
)

var (
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func init() {
	setupOnce.Do(func() {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			log.Fatal().Err(err).Msg("Loading configuration")
		}
		cfg.InitializeLogging()
		metrics.Init()

		log.Info().Str("env", cfg.Environment).Msg("Environment")

		dynamoClient, err := store.NewDynamoClient(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Creating DynamoDB client")
		}

		stationStore := store.NewStationStore(dynamoClient, cfg.StationsTable)
		provider := directory.NewCachedProvider(stationStore, cfg.StationListTTL)

		httpClient := client.New(client.Options{
			BaseURL:   cfg.GeocodeBaseURL,
			UserAgent: cfg.GeocodeUserAgent,
			Timeout:   cfg.HTTPTimeout,
		})
		geocoder, err := geocode.NewCachedGeocoder(geocode.NewHTTPGeocoder(httpClient), cfg.GeocodeCacheSize)
		if err != nil {
			log.Fatal().Err(err).Msg("Creating geocoder")
		}

		stationsHandler = handler.NewStationsHandler(provider, geocoder, nil)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log.Debug().Msg("Handling Lambda request")
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	lambda.Start(handleRequest)
}
