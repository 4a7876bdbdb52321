package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tapfinder/tapstations/internal/auth"
	"github.com/tapfinder/tapstations/internal/blob"
	"github.com/tapfinder/tapstations/internal/config"
	"github.com/tapfinder/tapstations/internal/directory"
	"github.com/tapfinder/tapstations/internal/geocode"
	"github.com/tapfinder/tapstations/internal/handler"
	"github.com/tapfinder/tapstations/internal/location"
	"github.com/tapfinder/tapstations/internal/metrics"
	"github.com/tapfinder/tapstations/internal/notify"
	"github.com/tapfinder/tapstations/internal/search"
	"github.com/tapfinder/tapstations/internal/store"
	"github.com/tapfinder/tapstations/pkg/http/client"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Loading configuration")
	}
	cfg.InitializeLogging()
	metrics.Init()

	ctx := context.Background()

	dynamoClient, err := store.NewDynamoClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating DynamoDB client")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Loading AWS configuration")
	}

	stationStore := store.NewStationStore(dynamoClient, cfg.StationsTable)
	reviewStore := store.NewReviewStore(dynamoClient, cfg.ReviewsTable)
	blobStore := blob.NewS3Store(s3.NewFromConfig(awsCfg), cfg.ImageBucket)

	httpClient := client.New(client.Options{
		BaseURL:   cfg.GeocodeBaseURL,
		UserAgent: cfg.GeocodeUserAgent,
		Timeout:   cfg.HTTPTimeout,
	})
	geocoder, err := geocode.NewCachedGeocoder(geocode.NewHTTPGeocoder(httpClient), cfg.GeocodeCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Creating geocoder")
	}

	notifier := notify.LogNotifier{}
	sync := directory.NewSync(store.NewSnapshotSource(stationStore, cfg.PollInterval), notifier)
	if err := sync.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Starting station directory sync")
	}
	defer sync.Close()

	searcher := search.NewSearcher(geocoder, sync, location.Static{}, notifier)
	authn := auth.NewJWTAuthenticator([]byte(cfg.JWTSecret))

	apiHandler := handler.NewHTTP(sync, searcher, stationStore, reviewStore, blobStore, geocoder, authn)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Mount("/api", apiHandler.Routes())
	r.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
