package llm

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type pricePoint struct {
	Date       string   `json:"date" description:"Date in YYYY-MM-DD format"`
	Price      float64  `json:"price"`
	IsForecast bool     `json:"isForecast,omitempty"`
	Notes      []string `json:"notes,omitempty"`
	internal   string
	Skipped    string `json:"-"`
}

type competitorQuote struct {
	Company string            `json:"company"`
	Product string            `json:"product"`
	Price   float64           `json:"price"`
	Sources map[string]string `json:"sources,omitempty"`
	Extra   *pricePoint       `json:"extra,omitempty"`
	Region  string
}

func schemaProps(t *testing.T, schema map[string]interface{}) map[string]interface{} {
	t.Helper()
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok, "schema has no properties: %v", schema)
	return props
}

func TestGenerateSchemaRejectsUnsupported(t *testing.T) {
	_, err := GenerateSchema(nil)
	require.ErrorContains(t, err, "cannot be nil")

	_, err = GenerateSchema("flash")
	require.ErrorContains(t, err, "must be a struct")

	n := 42
	_, err = GenerateSchema(&n)
	require.ErrorContains(t, err, "must be a struct")

	_, err = GenerateSchema([]string{})
	require.ErrorContains(t, err, "items must be structs")
}

func TestGenerateSchemaForStruct(t *testing.T) {
	schema, err := GenerateSchema(&pricePoint{})
	require.NoError(t, err)
	require.Equal(t, "object", schema["type"])

	props := schemaProps(t, schema)
	require.Len(t, props, 4)
	require.NotContains(t, props, "internal")
	require.NotContains(t, props, "Skipped")

	date := props["date"].(map[string]interface{})
	require.Equal(t, "string", date["type"])
	require.Equal(t, "Date in YYYY-MM-DD format", date["description"])
	require.Equal(t, "number", props["price"].(map[string]interface{})["type"])
	require.Equal(t, "boolean", props["isForecast"].(map[string]interface{})["type"])

	notes := props["notes"].(map[string]interface{})
	require.Equal(t, "array", notes["type"])
	require.Equal(t, "string", notes["items"].(map[string]interface{})["type"])

	require.ElementsMatch(t, []string{"date", "price"}, schema["required"])
}

func TestGenerateSchemaNestedFields(t *testing.T) {
	schema, err := GenerateSchema(competitorQuote{})
	require.NoError(t, err)

	props := schemaProps(t, schema)
	require.Contains(t, props, "Region", "untagged fields keep their Go name")

	sources := props["sources"].(map[string]interface{})
	require.Equal(t, "object", sources["type"])
	require.Equal(t, "string", sources["additionalProperties"].(map[string]interface{})["type"])

	extra := props["extra"].(map[string]interface{})
	require.Equal(t, "object", extra["type"])
	require.Contains(t, schemaProps(t, extra), "date")

	require.ElementsMatch(t, []string{"company", "product", "price", "Region"}, schema["required"])
}

func TestGenerateSchemaForSlice(t *testing.T) {
	schema, err := GenerateSchema(&[]competitorQuote{})
	require.NoError(t, err)
	require.Equal(t, "array", schema["type"])

	items := schema["items"].(map[string]interface{})
	require.Equal(t, "object", items["type"])
	require.Contains(t, schemaProps(t, items), "company")

	schema, err = GenerateSchema([]*pricePoint{})
	require.NoError(t, err)
	require.Equal(t, "array", schema["type"])
}

func TestBuildSchemaForScalarKinds(t *testing.T) {
	for _, v := range []interface{}{int(0), int8(0), int64(0), uint(0), uint32(0)} {
		require.Equal(t, "integer", buildSchemaForType(reflect.TypeOf(v))["type"], "%T", v)
	}
	for _, v := range []interface{}{float32(0), float64(0)} {
		require.Equal(t, "number", buildSchemaForType(reflect.TypeOf(v))["type"], "%T", v)
	}
	require.Equal(t, "array", buildSchemaForType(reflect.TypeOf([3]int{}))["type"])
	require.Equal(t, "string", buildSchemaForType(reflect.TypeOf(make(chan int)))["type"])

	f := 1.5
	require.Equal(t, "number", buildSchemaForType(reflect.TypeOf(&f))["type"])
}

func TestParseJSONTag(t *testing.T) {
	cases := []struct {
		tag       string
		name      string
		omitEmpty bool
	}{
		{"price", "price", false},
		{"isForecast,omitempty", "isForecast", true},
		{"price,omitempty,string", "price", true},
		{"", "", false},
		{"-", "-", false},
	}
	for _, tc := range cases {
		field := reflect.StructField{Name: "Field", Tag: reflect.StructTag(`json:"` + tc.tag + `"`)}
		name, omit := parseJSONTag(field)
		require.Equal(t, tc.name, name, "tag %q", tc.tag)
		require.Equal(t, tc.omitEmpty, omit, "tag %q", tc.tag)
	}
}

func TestParseStructured(t *testing.T) {
	var point pricePoint
	require.ErrorContains(t, ParseStructured(`{}`, nil), "cannot be nil")
	require.ErrorContains(t, ParseStructured(`{}`, point), "must be a pointer")
	require.ErrorContains(t, ParseStructured(`{not json}`, &point), "decode structured response")

	require.NoError(t, ParseStructured(`{"date":"2024-03-01","price":2.31,"isForecast":true}`, &point))
	require.Equal(t, "2024-03-01", point.Date)
	require.InDelta(t, 2.31, point.Price, 1e-9)
	require.True(t, point.IsForecast)

	var quotes []competitorQuote
	require.NoError(t, ParseStructured("```json\n[{\"company\":\"Blue Tokai\",\"product\":\"Attikan\",\"price\":650}]\n```", &quotes))
	require.Len(t, quotes, 1)
	require.Equal(t, "Blue Tokai", quotes[0].Company)
}

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		`[1,2]`:                      `[1,2]`,
		"```json\n[1,2]\n```":        `[1,2]`,
		"```\n{\"a\":1}\n```":        `{"a":1}`,
		"  ```json [1] ```  ":        `[1]`,
		"```json\n{\"a\":\"x\"}":     `{"a":"x"}`,
		"plain text with ``` inside": "plain text with ``` inside",
	}
	for in, want := range cases {
		require.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}
