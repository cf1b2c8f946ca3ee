package dashboard

import (
	"slices"
	"strings"
)

// ForwardFill replaces a missing price at index i > 0 with the value at
// i-1 after that index has itself been filled. Arabica and robusta are
// filled independently and index 0 is never touched. The input is not
// modified.
func ForwardFill(series []PricePoint) []PricePoint {
	out := clonePoints(series)
	for i := 1; i < len(out); i++ {
		if out[i].ArabicaPrice == nil {
			out[i].ArabicaPrice = cloneFloat(out[i-1].ArabicaPrice)
		}
		if out[i].RobustaPrice == nil {
			out[i].RobustaPrice = cloneFloat(out[i-1].RobustaPrice)
		}
	}
	return out
}

// NormalizeHistory sorts a copy of series ascending by date, keeping the
// relative order of equal dates, then forward-fills it.
func NormalizeHistory(series []PricePoint) []PricePoint {
	sorted := clonePoints(series)
	slices.SortStableFunc(sorted, func(a, b PricePoint) int {
		return strings.Compare(a.Date, b.Date)
	})
	return ForwardFill(sorted)
}

// Merge appends forecast after history for charting. Forecast entries keep
// only their forecast fields. When both inputs are non-empty the point
// dated like the last historical day becomes the bridge: its forecast
// fields are set to its own prices so the two lines meet. Inputs are not
// modified.
func Merge(history, forecast []PricePoint) []PricePoint {
	out := make([]PricePoint, 0, len(history)+len(forecast))
	for _, p := range history {
		out = append(out, clonePoint(p))
	}
	for _, f := range forecast {
		out = append(out, PricePoint{
			Date:            f.Date,
			ArabicaForecast: cloneFloat(f.ArabicaForecast),
			RobustaForecast: cloneFloat(f.RobustaForecast),
		})
	}

	if len(history) == 0 || len(forecast) == 0 {
		return out
	}
	lastDate := history[len(history)-1].Date
	for i := range out {
		if out[i].Date == lastDate {
			out[i].ArabicaForecast = cloneFloat(out[i].ArabicaPrice)
			out[i].RobustaForecast = cloneFloat(out[i].RobustaPrice)
			break
		}
	}
	return out
}
