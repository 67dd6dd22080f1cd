package rag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  QueryType
	}{
		{"cheapest unit", "What is the cheapest residential unit available?", QueryCheapest},
		{"lowest price", "which one has the lowest price", QueryCheapest},
		{"least expensive", "least expensive unit you have", QueryCheapest},
		{"affordable with bedrooms", "Show me the most affordable 2 bedroom unit", QueryCheapestWithBedrooms},
		{"cheap with br", "cheapest 3br unit available", QueryCheapestWithBedrooms},
		{"cheap with bedroom word", "cheapest bedroom unit cost", QueryCheapestWithBedrooms},
		{"price keyword without subject", "something cheap please", QueryGeneral},
		{"subject keyword without price", "what units are available", QueryGeneral},
		{"general question", "Does the building allow pets?", QueryGeneral},
		{"bedrooms without price conjunction", "I want a 3 bedroom unit with a balcony", QueryGeneral},
		{"case insensitive", "CHEAPEST UNIT?", QueryCheapest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassify_PriceConjunctionPrecedesBedroomCheck(t *testing.T) {
	// The bedroom check only applies once the price conjunction matched.
	require.Equal(t, QueryGeneral, Classify("2 bedroom unit"))
	require.Equal(t, QueryCheapestWithBedrooms, Classify("cheapest 2 bedroom unit"))
}

func TestExtractBedroomCount(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"digit with bedroom", "3 bedroom unit", 3},
		{"digit with bed", "need a 4 bed place", 4},
		{"digit with br", "2br please", 2},
		{"digit with spacing", "show me 5  bedroom options", 5},
		{"studio", "studio unit", 0},
		{"studio uppercase", "A STUDIO apartment", 0},
		{"default", "need something nice", 2},
		{"digit wins over studio", "1 bedroom or studio", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExtractBedroomCount(tt.query))
		})
	}
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "298,000", formatPrice(298000))
	require.Equal(t, "1,250,500", formatPrice(1250500))
	require.Equal(t, "950", formatPrice(950))
	require.Equal(t, "0", formatPrice(0))
}
