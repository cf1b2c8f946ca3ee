package dashboard

import (
	"github.com/shopspring/decimal"
)

// PricePoint is one calendar day of commodity data in USD per pound.
// Historical days carry the price fields, forecast days carry the forecast
// fields and the single bridge day carries both. A nil field is absent,
// which is not the same as zero.
type PricePoint struct {
	Date            string   `json:"date"`
	ArabicaPrice    *float64 `json:"arabica_price"`
	RobustaPrice    *float64 `json:"robusta_price"`
	ArabicaForecast *float64 `json:"arabica_forecast,omitempty"`
	RobustaForecast *float64 `json:"robusta_forecast,omitempty"`
}

// HasPrice reports whether any historical field is set.
func (p PricePoint) HasPrice() bool {
	return p.ArabicaPrice != nil || p.RobustaPrice != nil
}

// HasForecast reports whether any forecast field is set.
func (p PricePoint) HasForecast() bool {
	return p.ArabicaForecast != nil || p.RobustaForecast != nil
}

// forecastRow is the shape the forecast request asks the model for. All
// fields are required, unlike PricePoint.
type forecastRow struct {
	Date            string  `json:"date" description:"Forecasted date in YYYY-MM-DD format"`
	ArabicaForecast float64 `json:"arabica_forecast" description:"Forecasted price of Arabica coffee in USD per pound"`
	RobustaForecast float64 `json:"robusta_forecast" description:"Forecasted price of Robusta coffee in USD per pound"`
}

// CompetitorQuote is one retailer's current shelf price. Quotes have no
// identity beyond their position and are never deduplicated.
type CompetitorQuote struct {
	Company  string          `json:"company"`
	Product  string          `json:"product"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// InsightsBundle holds the three narrative recommendations.
type InsightsBundle struct {
	Sourcing  string `json:"sourcing" description:"Actionable insight on sourcing strategy, with explanation."`
	Inventory string `json:"inventory" description:"Actionable insight on inventory management, with explanation."`
	Pricing   string `json:"pricing" description:"Actionable insight on pricing strategy, with explanation."`
}

func floatPtr(v float64) *float64 { return &v }

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return floatPtr(*v)
}

func clonePoint(p PricePoint) PricePoint {
	return PricePoint{
		Date:            p.Date,
		ArabicaPrice:    cloneFloat(p.ArabicaPrice),
		RobustaPrice:    cloneFloat(p.RobustaPrice),
		ArabicaForecast: cloneFloat(p.ArabicaForecast),
		RobustaForecast: cloneFloat(p.RobustaForecast),
	}
}

func clonePoints(series []PricePoint) []PricePoint {
	if series == nil {
		return nil
	}
	out := make([]PricePoint, len(series))
	for i, p := range series {
		out[i] = clonePoint(p)
	}
	return out
}

func cloneQuotes(quotes []CompetitorQuote) []CompetitorQuote {
	if quotes == nil {
		return nil
	}
	out := make([]CompetitorQuote, len(quotes))
	copy(out, quotes)
	return out
}

func cloneInsights(b *InsightsBundle) *InsightsBundle {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}
