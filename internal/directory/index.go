package directory

import (
	"github.com/dhconnelly/rtreego"

	"github.com/tapfinder/tapstations/internal/geo"
	"github.com/tapfinder/tapstations/internal/models"
)

const (
	indexTolerance   = 0.0001
	indexMinChildren = 25
	indexMaxChildren = 50
	indexDimensions  = 2
)

type spatialStation struct {
	station models.Station
	rect    *rtreego.Rect
}

func (s *spatialStation) Bounds() *rtreego.Rect {
	return s.rect
}

// Index is an R-tree over station positions, rebuilt on every directory
// snapshot and queried for map viewports. Sync swaps whole instances rather
// than mutating a shared one.
type Index struct {
	tree *rtreego.Rtree
}

func NewIndex() *Index {
	return &Index{
		tree: rtreego.NewTree(indexDimensions, indexMinChildren, indexMaxChildren),
	}
}

// Insert adds stations to the index.
func (idx *Index) Insert(stations []models.Station) {
	for i := range stations {
		point := rtreego.Point{stations[i].Latitude, stations[i].Longitude}
		rect := point.ToRect(indexTolerance)
		idx.tree.Insert(&spatialStation{station: stations[i], rect: rect})
	}
}

// Search returns every indexed station inside the bounding box.
func (idx *Index) Search(box geo.BoundingBox) []models.Station {
	bottomLeft := rtreego.Point{box.BottomLeft.Latitude, box.BottomLeft.Longitude}
	lengths := []float64{
		box.TopRight.Latitude - box.BottomLeft.Latitude,
		box.TopRight.Longitude - box.BottomLeft.Longitude,
	}

	bounds, err := rtreego.NewRect(bottomLeft, lengths)
	if err != nil {
		return nil
	}

	matches := idx.tree.SearchIntersect(bounds)
	stations := make([]models.Station, 0, len(matches))
	for _, m := range matches {
		item, ok := m.(*spatialStation)
		if !ok {
			continue
		}
		// The rects carry tolerance padding; re-check the actual point.
		s := item.station
		if s.Latitude >= box.BottomLeft.Latitude && s.Latitude <= box.TopRight.Latitude &&
			s.Longitude >= box.BottomLeft.Longitude && s.Longitude <= box.TopRight.Longitude {
			stations = append(stations, s)
		}
	}
	return stations
}

// Size reports the number of indexed stations.
func (idx *Index) Size() int {
	return idx.tree.Size()
}
