package geocoder

import (
	"strings"

	"library-events/internal/usecase/query"
)

// zipCoords maps Chicago-area ZIP codes to approximate centers. ZIP
// lookups are the common case for the distance filter and never need a
// network round trip.
var zipCoords = map[string]query.Coordinates{
	"60004": {Lat: 42.0039, Lon: -87.9006}, // Arlington Heights
	"60005": {Lat: 41.9581, Lon: -87.9331}, // Arlington Heights
	"60007": {Lat: 42.0042, Lon: -87.9373}, // Elk Grove Village
	"60008": {Lat: 42.0331, Lon: -87.9698}, // Rolling Meadows
	"60016": {Lat: 42.0334, Lon: -87.8834}, // Des Plaines
	"60018": {Lat: 42.0403, Lon: -87.9545}, // Des Plaines
	"60022": {Lat: 42.1372, Lon: -87.7581}, // Glencoe
	"60025": {Lat: 42.0631, Lon: -87.8006}, // Glenview
	"60033": {Lat: 42.0522, Lon: -88.0392}, // Glendale Heights
	"60053": {Lat: 42.0406, Lon: -87.7834}, // Morton Grove
	"60056": {Lat: 42.1231, Lon: -87.7370}, // Mount Prospect
	"60062": {Lat: 42.1478, Lon: -87.9215}, // Northbrook
	"60068": {Lat: 42.0111, Lon: -87.8406}, // Park Ridge
	"60076": {Lat: 42.0406, Lon: -87.7545}, // Skokie
	"60077": {Lat: 42.0406, Lon: -87.7334}, // Skokie
	"60089": {Lat: 42.2331, Lon: -87.8609}, // Buffalo Grove
	"60090": {Lat: 42.2189, Lon: -87.8845}, // Wheeling
	"60091": {Lat: 42.0722, Lon: -87.7220}, // Wilmette
	"60169": {Lat: 42.0631, Lon: -88.0834}, // Hoffman Estates
	"60201": {Lat: 42.0450, Lon: -87.6877}, // Evanston
	"60305": {Lat: 41.8950, Lon: -87.8031}, // River Forest
	"60613": {Lat: 41.9536, Lon: -87.6547}, // Lakeview
	"60614": {Lat: 41.9297, Lon: -87.6436}, // Lincoln Park
	"60640": {Lat: 41.9675, Lon: -87.6947}, // Uptown
	"60645": {Lat: 41.9700, Lon: -87.6800}, // West Ridge
	"60646": {Lat: 41.9917, Lon: -87.7581}, // Edgebrook
	"60659": {Lat: 41.9740, Lon: -87.6700}, // Budlong Woods
	"60712": {Lat: 42.0075, Lon: -87.7220}, // Lincolnwood
	"60714": {Lat: 42.0281, Lon: -87.8009}, // Niles
}

// areaPattern matches a neighborhood phrase inside a free-form
// address. Patterns are checked in order so the specific ones win over
// the bare city fallback.
type areaPattern struct {
	substr string
	coords query.Coordinates
}

var areaPatterns = []areaPattern{
	{"downtown chicago", query.Coordinates{Lat: 41.8781, Lon: -87.6298}},
	{"loop chicago", query.Coordinates{Lat: 41.8781, Lon: -87.6298}},
	{"north side chicago", query.Coordinates{Lat: 41.9500, Lon: -87.6500}},
	{"south side chicago", query.Coordinates{Lat: 41.8000, Lon: -87.6298}},
	{"west side chicago", query.Coordinates{Lat: 41.8781, Lon: -87.7000}},
	{"chicago", query.Coordinates{Lat: 41.8781, Lon: -87.6298}},
}

// staticLookup resolves an address from the built-in tables.
func staticLookup(address string) (query.Coordinates, bool) {
	if coords, ok := zipCoords[address]; ok {
		return coords, true
	}
	lower := strings.ToLower(address)
	for _, p := range areaPatterns {
		if strings.Contains(lower, p.substr) {
			return p.coords, true
		}
	}
	return query.Coordinates{}, false
}
