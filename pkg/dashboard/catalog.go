package dashboard

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ekata-api/pkg/llm"
	"ekata-api/pkg/prompt"
)

const (
	dateLayout = "2006-01-02"
	windowDays = 30
	packGrams  = 250
)

// DefaultCompanies are the Indian roasters quoted on the competitor panel.
var DefaultCompanies = []string{
	"Blue Tokai Coffee Roasters",
	"Araku Coffee",
	"Savorworks Roasters",
	"Naivo Cafe & Roasters",
	"Curious Life Coffee Roasters",
}

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Catalog builds the four generation requests the dashboard issues.
type Catalog struct {
	now       func() time.Time
	companies []string

	history     *prompt.Template
	forecast    *prompt.Template
	competitors *prompt.Template
	insights    *prompt.Template

	forecastSchema map[string]any
	insightsSchema map[string]any
}

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithClock sets the clock used for reference dates.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCompanies replaces DefaultCompanies.
func WithCompanies(companies []string) CatalogOption {
	return func(c *Catalog) {
		var cleaned []string
		for _, name := range companies {
			if name = strings.TrimSpace(name); name != "" {
				cleaned = append(cleaned, name)
			}
		}
		if len(cleaned) > 0 {
			c.companies = cleaned
		}
	}
}

// NewCatalog parses the embedded prompt templates.
func NewCatalog(opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		now:       time.Now,
		companies: append([]string(nil), DefaultCompanies...),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	load := func(name string) *prompt.Template {
		if err != nil {
			return nil
		}
		var tpl *prompt.Template
		tpl, err = prompt.NewTemplateFS(promptFS, "prompts/"+name, nil)
		return tpl
	}
	c.history = load("history.tmpl")
	c.forecast = load("forecast.tmpl")
	c.competitors = load("competitors.tmpl")
	c.insights = load("insights.tmpl")
	if err != nil {
		return nil, err
	}

	if c.forecastSchema, err = llm.GenerateSchema(&[]forecastRow{}); err != nil {
		return nil, fmt.Errorf("forecast schema: %w", err)
	}
	if c.insightsSchema, err = llm.GenerateSchema(&InsightsBundle{}); err != nil {
		return nil, fmt.Errorf("insights schema: %w", err)
	}
	return c, nil
}

// Companies returns the configured competitor list.
func (c *Catalog) Companies() []string {
	return append([]string(nil), c.companies...)
}

// Digests maps each template name to the sha256 of its source.
func (c *Catalog) Digests() map[string]string {
	return map[string]string{
		"history":     c.history.Digest(),
		"forecast":    c.forecast.Digest(),
		"competitors": c.competitors.Digest(),
		"insights":    c.insights.Digest(),
	}
}

// HistoricalPrices asks for the last 30 days of arabica and robusta
// futures ending yesterday. The answer must come from live search, so no
// schema is attached.
func (c *Catalog) HistoricalPrices() (GenerateRequest, error) {
	today := c.now()
	text, err := c.history.Render(map[string]any{
		"Days":          windowDays,
		"ReferenceDate": today.Format(dateLayout),
		"Year":          today.Year(),
	})
	if err != nil {
		return GenerateRequest{}, err
	}
	return GenerateRequest{Prompt: text, UseGoogleSearch: true}, nil
}

// Forecast asks for 30 days of forecasts starting the day after the last
// date in history, which must be normalized and non-empty. The history is
// embedded verbatim as JSON.
func (c *Catalog) Forecast(history []PricePoint) (GenerateRequest, error) {
	if len(history) == 0 {
		return GenerateRequest{}, errors.New("dashboard: forecast needs a non-empty history")
	}
	lastDate := history[len(history)-1].Date
	last, err := time.Parse(dateLayout, lastDate)
	if err != nil {
		return GenerateRequest{}, fmt.Errorf("dashboard: last history date %q: %w", lastDate, err)
	}
	encoded, err := marshalPrompt(history)
	if err != nil {
		return GenerateRequest{}, err
	}

	text, err := c.forecast.Render(map[string]any{
		"Days":      windowDays,
		"History":   encoded,
		"LastDate":  lastDate,
		"StartDate": last.AddDate(0, 0, 1).Format(dateLayout),
	})
	if err != nil {
		return GenerateRequest{}, err
	}
	return GenerateRequest{Prompt: text, Schema: c.forecastSchema}, nil
}

// CompetitorPrices asks for current 250g retail prices of the configured
// companies. Unverifiable entries must be omitted by the model.
func (c *Catalog) CompetitorPrices() (GenerateRequest, error) {
	text, err := c.competitors.Render(map[string]any{
		"ReferenceDate": c.now().Format(dateLayout),
		"PackGrams":     packGrams,
		"Companies":     c.companies,
	})
	if err != nil {
		return GenerateRequest{}, err
	}
	return GenerateRequest{Prompt: text, UseGoogleSearch: true}, nil
}

// Insights asks for sourcing, inventory and pricing recommendations over
// the merged price series and the competitor quotes.
func (c *Catalog) Insights(prices []PricePoint, quotes []CompetitorQuote) (GenerateRequest, error) {
	encodedPrices, err := marshalPrompt(prices)
	if err != nil {
		return GenerateRequest{}, err
	}
	encodedQuotes, err := marshalPrompt(quotes)
	if err != nil {
		return GenerateRequest{}, err
	}

	text, err := c.insights.Render(map[string]any{
		"Days":      windowDays,
		"PackGrams": packGrams,
		"Prices":    encodedPrices,
		"Quotes":    encodedQuotes,
	})
	if err != nil {
		return GenerateRequest{}, err
	}
	return GenerateRequest{Prompt: text, Schema: c.insightsSchema}, nil
}

func marshalPrompt(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode prompt data: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
