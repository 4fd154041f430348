// Package services contains domain business logic.
package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ersonp/diagnostics-tracker/internal/domain/entities"
)

// Extractor turns evidence about one startup into candidate changes.
// The same inputs always produce the same candidates in the same order.
type Extractor interface {
	Extract(ctx context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.CandidateChange, error)
}

// DateLayout is the format of acquisition dates.
const DateLayout = "2006-01-02"

var (
	fundingPattern   = regexp.MustCompile(`(?i)rais(?:es?|ed)\s+\$(\d+(?:\.\d+)?)\s*(million|billion|m|b)`)
	valuationPattern = regexp.MustCompile(`(?i)valued?\s+at\s+\$(\d+(?:\.\d+)?)\s*(million|billion|m|b)`)
	usersPattern     = regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*(million|thousand|k|m)?\s+(users|members|customers|subscribers)`)

	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// RuleExtractor matches fixed text patterns for funding rounds, valuations,
// user counts and acquisitions. It never fails.
type RuleExtractor struct{}

// NewRuleExtractor creates a pattern-based extractor.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

// Extract implements Extractor. Each item yields at most one candidate per field.
func (e *RuleExtractor) Extract(_ context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.CandidateChange, error) {
	acquiredPattern := acquisitionPattern(startup.Name)

	var out []entities.CandidateChange
	for _, item := range items {
		text := item.Text()

		candidate := func(field entities.Field, v entities.Value, c entities.Confidence) entities.CandidateChange {
			return entities.CandidateChange{
				StartupID:  startup.ID,
				Field:      field,
				OldValue:   startup.CurrentValue(field),
				NewValue:   v,
				SourceURL:  item.SourceURL,
				Confidence: c,
				ObservedAt: item.PublishedAt,
			}
		}

		if amount, ok := matchAmount(fundingPattern, text); ok {
			out = append(out, candidate(entities.FieldTotalFunding, entities.NumberValue(amount), entities.ConfidenceHigh))
		}

		if amount, ok := matchAmount(valuationPattern, text); ok {
			out = append(out, candidate(entities.FieldValuation, entities.NumberValue(amount), entities.ConfidenceHigh))
		}

		if count, ok := matchUsers(text); ok {
			out = append(out, candidate(entities.FieldEstimatedUsers, entities.NumberValue(count), entities.ConfidenceMedium))
		}

		if acquirer, ok := matchAcquirer(acquiredPattern, text); ok {
			c := candidate(entities.FieldAcquisition, entities.AcquisitionValue(entities.Acquisition{
				Acquirer: acquirer,
				Date:     item.PublishedAt.UTC().Format(DateLayout),
			}), entities.ConfidenceHigh)
			c.OldValue = entities.NullValue()
			out = append(out, c)
		}
	}

	return out, nil
}

// acquisitionPattern builds the "<acquirer> acquires <startup>" pattern.
// Returns nil for an empty name.
func acquisitionPattern(name string) *regexp.Regexp {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return regexp.MustCompile(fmt.Sprintf(`(?i)([\w\s]+)\s+acquire[sd]\s+%s`, regexp.QuoteMeta(strings.ToLower(name))))
}

// matchAmount parses "$<n> <million|billion|m|b>" into dollars.
func matchAmount(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	amount, err := decimal.NewFromString(m[1])
	if err != nil {
		return 0, false
	}
	unit := million
	if strings.HasPrefix(strings.ToLower(m[2]), "b") {
		unit = billion
	}
	return finite(amount.Mul(unit))
}

// matchUsers parses "<n>[,nnn] [million|thousand|k|m] users" into a count.
func matchUsers(text string) (float64, bool) {
	m := usersPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	count, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	switch unit := strings.ToLower(m[2]); {
	case strings.HasPrefix(unit, "m"):
		count = count.Mul(million)
	case strings.HasPrefix(unit, "k"), strings.HasPrefix(unit, "t"):
		count = count.Mul(thousand)
	}
	return finite(count)
}

// finite converts d to a float64, rejecting values that overflow it.
func finite(d decimal.Decimal) (float64, bool) {
	return finiteFloat(d.InexactFloat64())
}

func finiteFloat(f float64) (float64, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// matchAcquirer returns the acquirer named before "acquired <startup>".
func matchAcquirer(re *regexp.Regexp, text string) (string, bool) {
	if re == nil {
		return "", false
	}
	if !strings.Contains(text, "acqui") {
		return "", false
	}
	if !strings.Contains(text, "acquired") && !strings.Contains(text, "acquisition") {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	acquirer := strings.TrimSpace(m[1])
	if acquirer == "" {
		return "", false
	}
	return acquirer, true
}

// ChainExtractor runs several extractors and concatenates their candidates.
type ChainExtractor struct {
	extractors []Extractor
}

// NewChainExtractor creates an extractor that runs each of extractors in order.
func NewChainExtractor(extractors ...Extractor) *ChainExtractor {
	return &ChainExtractor{extractors: extractors}
}

// Extract implements Extractor. The first error aborts the chain.
func (e *ChainExtractor) Extract(ctx context.Context, startup entities.Startup, items []entities.EvidenceItem) ([]entities.CandidateChange, error) {
	var out []entities.CandidateChange
	for i, ex := range e.extractors {
		//nolint:loopcall // each strategy sees the full evidence set
		candidates, err := ex.Extract(ctx, startup, items)
		if err != nil {
			return nil, fmt.Errorf("extractor %d: %w", i, err)
		}
		out = append(out, candidates...)
	}
	return out, nil
}
