package nutrition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultGrams is the portion assumed when an item names no quantity.
const DefaultGrams = 100.0

// MatchPolicy decides which table entry wins when several food names occur
// in the same item (e.g. "paneer" and "palak paneer").
type MatchPolicy string

const (
	// MatchLongest picks the longest matching name; ties go to table order.
	MatchLongest MatchPolicy = "longest"
	// MatchFirst picks the first matching name in table order.
	MatchFirst MatchPolicy = "first"
)

// ParseMatchPolicy converts a config value into a MatchPolicy.
// An empty string selects MatchFirst.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch MatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchFirst:
		return MatchFirst, nil
	case MatchLongest:
		return MatchLongest, nil
	default:
		return "", fmt.Errorf("unknown match policy %q", s)
	}
}

var gramsPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:grams?|gms?|g)\b`)

// Totals accumulates macros. The zero value is an empty total.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (t *Totals) add(f Food, grams float64) {
	m := grams / 100
	t.Calories += f.Calories * m
	t.Protein += f.Protein * m
	t.Carbs += f.Carbs * m
	t.Fat += f.Fat * m
}

func (t *Totals) merge(o Totals) {
	t.Calories += o.Calories
	t.Protein += o.Protein
	t.Carbs += o.Carbs
	t.Fat += o.Fat
}

// Item is the contribution of one comma-separated mention.
type Item struct {
	Query  string  `json:"query"`
	Food   string  `json:"food"`
	Grams  float64 `json:"grams"`
	Totals Totals  `json:"totals"`
}

// Analysis is the itemized result of a query.
type Analysis struct {
	Totals    Totals   `json:"totals"`
	Items     []Item   `json:"items"`
	Unmatched []string `json:"unmatched"`
}

// Parser turns free text into macro totals. It holds no mutable state.
type Parser struct {
	table  *Table
	policy MatchPolicy
}

// NewParser returns a parser over table using policy to resolve overlaps.
func NewParser(table *Table, policy MatchPolicy) *Parser {
	if policy == "" {
		policy = MatchFirst
	}
	return &Parser{table: table, policy: policy}
}

// Policy returns the configured match policy.
func (p *Parser) Policy() MatchPolicy { return p.policy }

// Parse returns the summed macros of every recognized item in query.
// Unrecognized items contribute nothing; it never fails.
func (p *Parser) Parse(query string) Totals {
	return p.Analyze(query).Totals
}

// Analyze is Parse with a per-item breakdown.
func (p *Parser) Analyze(query string) Analysis {
	a := Analysis{Items: []Item{}, Unmatched: []string{}}

	for _, raw := range strings.Split(strings.ToLower(query), ",") {
		item := strings.TrimSpace(raw)
		grams := quantity(item)

		food, ok := p.table.Match(item, p.policy)
		if !ok {
			if item != "" {
				a.Unmatched = append(a.Unmatched, item)
			}
			continue
		}

		var t Totals
		t.add(food, grams)
		a.Totals.merge(t)
		a.Items = append(a.Items, Item{Query: item, Food: food.Name, Grams: grams, Totals: t})
	}
	return a
}

func quantity(item string) float64 {
	m := gramsPattern.FindStringSubmatch(item)
	if m == nil {
		return DefaultGrams
	}
	g, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return DefaultGrams
	}
	return g
}
