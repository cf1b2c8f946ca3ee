package weather

import "strings"

// Estate is a named coffee growing region.
type Estate struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var estates = []Estate{
	{Name: "Antioquia - Colombia", Latitude: 6.55, Longitude: -75.82},
	{Name: "Minas Gerais - Brazil", Latitude: -21.22, Longitude: -45.0},
	{Name: "Tarrazú - Costa Rica", Latitude: 9.65, Longitude: -84.03},
	{Name: "Sidamo - Ethiopia", Latitude: 6.85, Longitude: 38.25},
	{Name: "Guji - Ethiopia", Latitude: 5.58, Longitude: 39.43},
	{Name: "Kayanza - Burundi", Latitude: -2.9, Longitude: 29.63},
	{Name: "Kibira - Rwanda", Latitude: -1.75, Longitude: 29.6},
	{Name: "Java - Indonesia", Latitude: -7.6, Longitude: 110.0},
	{Name: "Sumatra - Indonesia", Latitude: 3.58, Longitude: 98.67},
	{Name: "Kona - Hawaii, USA", Latitude: 19.64, Longitude: -155.99},
	{Name: "Coorg - India", Latitude: 12.3375, Longitude: 75.8069},
	{Name: "Chikmagalur - India", Latitude: 13.3157, Longitude: 75.7754},
	{Name: "Araku Valley - India", Latitude: 18.3333, Longitude: 82.8667},
	{Name: "Wayanad - India", Latitude: 11.6854, Longitude: 76.1320},
	{Name: "Nilgiris - India", Latitude: 11.4167, Longitude: 76.6833},
	{Name: "Palani Hills - India", Latitude: 10.236, Longitude: 77.52},
	{Name: "Shevaroy Hills - India", Latitude: 11.77, Longitude: 78.2},
}

// Estates returns a copy of the registry in display order.
func Estates() []Estate {
	return append([]Estate(nil), estates...)
}

// LookupEstate finds an estate by name, ignoring case and surrounding
// spaces. A bare region name such as "coorg" also matches.
func LookupEstate(name string) (Estate, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Estate{}, false
	}
	for _, e := range estates {
		full := strings.ToLower(e.Name)
		region, _, _ := strings.Cut(full, " - ")
		if needle == full || needle == region {
			return e, true
		}
	}
	return Estate{}, false
}
