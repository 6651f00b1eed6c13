// Package analytics computes read-only citation and view statistics for a
// single thesis. Every function recomputes from the rows it is given.
package analytics

import (
	"math"
	"sort"
	"strings"

	"thesisrepo/internal/models"
)

// DecayBase is the yearly recency decay applied to each citation.
const DecayBase = 0.9

// Publication weights.
const (
	WeightJournal    = 3.0
	WeightConference = 2.0
	WeightThesis     = 1.0
	WeightOther      = 1.0
)

// Publication type keywords, including the Turkish terms used by the
// repository's original catalogue.
var (
	journalTerms    = []string{"journal", "dergi"}
	conferenceTerms = []string{"conference", "konferans"}
	thesisTerms     = []string{"thesis", "tez"}
)

// YearCount is one point of the by-year series.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// TypeCount is one point of the by-type series.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Weight classifies a free-text publication type.
func Weight(publicationType string) float64 {
	t := strings.ToLower(publicationType)
	switch {
	case containsAny(t, journalTerms):
		return WeightJournal
	case containsAny(t, conferenceTerms):
		return WeightConference
	case containsAny(t, thesisTerms):
		return WeightThesis
	default:
		return WeightOther
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// Impact sums weight * 0.9^age over all citations. Undated citations count
// as published in nowYear; citations dated in the future are not boosted.
func Impact(citations []models.Citation, nowYear int) float64 {
	impact := 0.0
	for i := range citations {
		year := nowYear
		if citations[i].YearPublished != nil {
			year = *citations[i].YearPublished
		}
		age := nowYear - year
		if age < 0 {
			age = 0
		}
		impact += Weight(citations[i].PublicationType) * math.Pow(DecayBase, float64(age))
	}
	return impact
}

// ByYear counts dated citations per year in ascending year order.
// Undated citations are skipped.
func ByYear(citations []models.Citation) []YearCount {
	counts := make(map[int]int)
	for i := range citations {
		if y := citations[i].YearPublished; y != nil {
			counts[*y]++
		}
	}

	out := make([]YearCount, 0, len(counts))
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// ByType counts citations per normalized publication type, most frequent
// first and alphabetical among ties. Blank types are skipped.
func ByType(citations []models.Citation) []TypeCount {
	counts := make(map[string]int)
	for i := range citations {
		t := NormalizeType(citations[i].PublicationType)
		if t == "" {
			continue
		}
		counts[t]++
	}

	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{Type: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// NormalizeType lowercases and trims a publication type.
func NormalizeType(publicationType string) string {
	return strings.ToLower(strings.TrimSpace(publicationType))
}
