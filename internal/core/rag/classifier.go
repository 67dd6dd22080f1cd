package rag

import (
	"regexp"
	"strconv"
	"strings"
)

// QueryType is the classified category of a broker's query.
type QueryType string

const (
	QueryCheapest             QueryType = "cheapest"
	QueryCheapestWithBedrooms QueryType = "cheapest_with_bedrooms"
	QueryGeneral              QueryType = "general"
)

var (
	numberedBedPattern  = regexp.MustCompile(`\d+\s*bed`)
	bedroomCountPattern = regexp.MustCompile(`(?i)(\d+)\s*(bedroom|br|bed)`)
)

var (
	priceKeywords   = []string{"cheap", "afford", "lowest", "least expensive"}
	subjectKeywords = []string{"price", "cost", "unit", "available"}
)

// Classify maps raw query text to a query type. A query is a price query
// when it contains both a price keyword and a subject keyword; the bedroom
// check only applies within a price query.
func Classify(query string) QueryType {
	q := strings.ToLower(query)

	if containsAny(q, priceKeywords) && containsAny(q, subjectKeywords) {
		if strings.Contains(q, "bedroom") || strings.Contains(q, "br") || numberedBedPattern.MatchString(q) {
			return QueryCheapestWithBedrooms
		}
		return QueryCheapest
	}

	return QueryGeneral
}

// ExtractBedroomCount pulls the requested bedroom count out of the query.
// "studio" counts as 0; when nothing matches the count defaults to 2.
func ExtractBedroomCount(query string) int {
	if m := bedroomCountPattern.FindStringSubmatch(query); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}

	if strings.Contains(strings.ToLower(query), "studio") {
		return 0
	}

	return 2
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
