package geo

import (
	"math"
	"sort"

	"github.com/tapfinder/tapstations/internal/models"
)

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// points, computed with the Haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// Rank computes the distance from origin to every station, sorts ascending
// and keeps the first limit results. Ties keep the input order.
func Rank(stations []models.Station, origin models.Coordinates, limit int) []models.RankedStation {
	ranked := make([]models.RankedStation, len(stations))
	for i, station := range stations {
		ranked[i] = models.RankedStation{
			Station:    station,
			DistanceKm: Distance(origin.Latitude, origin.Longitude, station.Latitude, station.Longitude),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
