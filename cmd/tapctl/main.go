package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tapfinder/tapstations/internal/auth"
	"github.com/tapfinder/tapstations/internal/config"
	"github.com/tapfinder/tapstations/internal/directory"
	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/models"
	"github.com/tapfinder/tapstations/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tapctl",
	Short: "Admin tooling for the water-station directory",
	Long:  `Seed and query the water-station directory from the command line.`,
}

var (
	seedFile string
	seedUID  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load stations from a JSON file into the directory store",
	RunE:  runSeed,
}

var (
	nearestLat   float64
	nearestLon   float64
	nearestLimit int
)

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "Rank stations by distance from a point",
	RunE:  runNearest,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "stations.json", "JSON file with stations to load")
	seedCmd.Flags().StringVar(&seedUID, "uid", "tapctl", "identity recorded as the contributor")

	nearestCmd.Flags().Float64Var(&nearestLat, "lat", geo.FallbackRegion.Latitude, "Query latitude")
	nearestCmd.Flags().Float64Var(&nearestLon, "lon", geo.FallbackRegion.Longitude, "Query longitude")
	nearestCmd.Flags().IntVarP(&nearestLimit, "limit", "n", 2, "How many stations to return")

	rootCmd.AddCommand(seedCmd, nearestCmd)
}

func newStationStore(ctx context.Context) (*store.StationStore, *config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, err
	}
	cfg.InitializeLogging()

	client, err := store.NewDynamoClient(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("creating DynamoDB client: %w", err)
	}
	return store.NewStationStore(client, cfg.StationsTable), cfg, nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	stationStore, _, err := newStationStore(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var inputs []store.AddStationInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("parsing seed file: %w", err)
	}

	identity := &auth.Identity{UID: seedUID}
	for _, input := range inputs {
		station, err := stationStore.AddStation(ctx, identity, input)
		if err != nil {
			return fmt.Errorf("adding station %q: %w", input.Name, err)
		}
		log.Info().Str("station_id", station.ID).Str("name", station.Name).Msg("Seeded station")
	}

	fmt.Printf("Seeded %d stations from %s\n", len(inputs), seedFile)
	return nil
}

func runNearest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	stationStore, cfg, err := newStationStore(ctx)
	if err != nil {
		return err
	}

	provider := directory.NewCachedProvider(stationStore, cfg.StationListTTL)
	stations, err := provider.Stations(ctx)
	if err != nil {
		return err
	}

	origin := models.Coordinates{Latitude: nearestLat, Longitude: nearestLon}
	for i, ranked := range geo.Rank(stations, origin, nearestLimit) {
		fmt.Printf("%d. %s (%.2f km) %s\n", i+1, ranked.Name, ranked.DistanceKm, ranked.Address)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
