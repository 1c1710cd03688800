// Package duplicate detects when participants of an event plan to wear the
// same or a similar item. Detection is layered: name identity, then fixed
// rules, then an optional external Comparator. A missing or failing
// Comparator only removes the last layer.
package duplicate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/valpere/DressCodex/internal/catalog"
	"github.com/valpere/DressCodex/internal/color"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/pkg/types"
)

// Thresholds tunes the engine. Zero fields take the defaults.
type Thresholds struct {
	// Similar is the minimum comparator score kept as a similar finding.
	Similar float64 `json:"similar" yaml:"similar"`
	// Verdict is the minimum confidence of a duplicate verdict.
	Verdict float64 `json:"verdict" yaml:"verdict"`
	// ExactVerdict is the confidence from which a verdict is "exact".
	ExactVerdict float64 `json:"exact_verdict" yaml:"exact_verdict"`
	// BrandColor is the confidence of the brand+color rule.
	BrandColor float64 `json:"brand_color" yaml:"brand_color"`
	// SubcategoryColor is the confidence of the subcategory+color rule.
	SubcategoryColor float64 `json:"subcategory_color" yaml:"subcategory_color"`
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Similar:          0.6,
		Verdict:          0.7,
		ExactVerdict:     0.9,
		BrandColor:       0.8,
		SubcategoryColor: 0.7,
	}
}

// WithDefaults fills unset (zero) thresholds from DefaultThresholds.
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.Similar > 0 {
		d.Similar = t.Similar
	}
	if t.Verdict > 0 {
		d.Verdict = t.Verdict
	}
	if t.ExactVerdict > 0 {
		d.ExactVerdict = t.ExactVerdict
	}
	if t.BrandColor > 0 {
		d.BrandColor = t.BrandColor
	}
	if t.SubcategoryColor > 0 {
		d.SubcategoryColor = t.SubcategoryColor
	}
	return d
}

// Engine runs duplicate detection. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	comparator Comparator
	thresholds Thresholds
	metrics    *monitoring.MetricsManager
	logger     utils.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithComparator enables the similarity and verdict tiers.
func WithComparator(c Comparator) Option {
	return func(e *Engine) { e.comparator = c }
}

// WithThresholds overrides the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(e *Engine) { e.thresholds = t.WithDefaults() }
}

// WithMetrics records findings and detection latency.
func WithMetrics(m *monitoring.MetricsManager) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l utils.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine. Without WithComparator only the exact and
// rule tiers run.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		thresholds: DefaultThresholds(),
		logger:     utils.NewComponentLogger("duplicate-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the thresholds in effect.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// FindDuplicates compares candidate with existing and returns the ranked
// findings. It never fails.
func (e *Engine) FindDuplicates(ctx context.Context, candidate types.WardrobeItem, existing []types.WardrobeItem) []Finding {
	return e.Detect(ctx, candidate, existing).Findings
}

// Detect is FindDuplicates plus the status of the similarity tier.
func (e *Engine) Detect(ctx context.Context, candidate types.WardrobeItem, existing []types.WardrobeItem) Report {
	start := time.Now()
	report := e.detect(ctx, candidate, existing)
	e.metrics.RecordDetection("find", time.Since(start))
	e.recordFindings(report.Findings)
	return report
}

func (e *Engine) detect(ctx context.Context, candidate types.WardrobeItem, existing []types.WardrobeItem) Report {
	cand := annotate(candidate)
	others := make([]annotated, len(existing))
	for i, item := range existing {
		others[i] = annotate(item)
	}

	var findings []Finding
	var rest []annotated

	// exact tier
	group := []annotated{cand}
	for _, o := range others {
		if o.name != "" && o.name == cand.name {
			group = append(group, o)
		} else {
			rest = append(rest, o)
		}
	}
	findings = append(findings, exactFindings(cand, group)...)

	// rule tier
	var remaining []annotated
	for _, o := range rest {
		if f, ok := e.ruleFinding(cand, o); ok {
			findings = append(findings, f)
			continue
		}
		remaining = append(remaining, o)
	}

	report := Report{Similarity: TierSkipped}
	if len(remaining) > 0 {
		similar, status, err := e.similarFindings(ctx, cand, remaining)
		findings = append(findings, similar...)
		report.Similarity = status
		if err != nil {
			report.Error = err.Error()
		}
	}

	rank(findings)
	if findings == nil {
		findings = []Finding{}
	}
	report.Findings = findings
	return report
}

// CheckDuplicate asks the comparator for a binary verdict on every existing
// item. Only confident duplicates are returned; any comparator failure
// yields an empty list.
func (e *Engine) CheckDuplicate(ctx context.Context, candidate types.WardrobeItem, existing []types.WardrobeItem) []Verdict {
	start := time.Now()
	defer func() { e.metrics.RecordDetection("verdict", time.Since(start)) }()

	verdicts := []Verdict{}
	if len(existing) == 0 {
		return verdicts
	}
	if e.comparator == nil {
		e.logger.Debug("no comparator configured, skipping duplicate verdicts")
		return verdicts
	}

	texts := make([]string, len(existing))
	for i, item := range existing {
		texts[i] = item.Describe()
	}
	judgements, err := e.comparator.Judge(ctx, candidate.Describe(), texts)
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"tier":  "verdict",
			"item":  candidate.Name,
			"error": err.Error(),
		}).Warn("duplicate verdict unavailable")
		return verdicts
	}

	for _, j := range judgements {
		if j.Index < 0 || j.Index >= len(existing) {
			continue
		}
		if !j.IsDuplicate || j.Confidence < e.thresholds.Verdict {
			continue
		}
		dupType := DuplicateSimilar
		if j.Confidence >= e.thresholds.ExactVerdict {
			dupType = DuplicateExact
		}
		verdicts = append(verdicts, Verdict{
			ItemID:        existing[j.Index].ID,
			Confidence:    j.Confidence,
			IsDuplicate:   true,
			DuplicateType: dupType,
			Reason:        j.Reason,
		})
	}
	sort.SliceStable(verdicts, func(a, b int) bool {
		return verdicts[a].Confidence > verdicts[b].Confidence
	})
	return verdicts
}

// DetectEvent scans every unordered pair of items once, in list order
// (item i against each later item j). Findings are accumulated per pair
// without deduplication across pairs. Pairs are processed sequentially.
func (e *Engine) DetectEvent(ctx context.Context, items []types.WardrobeItem) []Finding {
	start := time.Now()
	defer func() { e.metrics.RecordDetection("event", time.Since(start)) }()

	findings := []Finding{}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if ctx.Err() != nil {
				e.logger.WithField("pairs_done", i).Warn("event scan cancelled")
				return findings
			}
			report := e.detect(ctx, items[i], items[j:j+1])
			e.recordFindings(report.Findings)
			findings = append(findings, report.Findings...)
		}
	}
	return findings
}

func (e *Engine) ruleFinding(cand, o annotated) (Finding, bool) {
	if cand.color == "" || cand.color != o.color {
		return Finding{}, false
	}

	if cand.brand != "" && cand.brand == o.brand {
		return e.pairFinding(cand, o, e.thresholds.BrandColor,
			fmt.Sprintf("Same brand (%s) and color (%s)", o.item.Brand, colorLabel(o))), true
	}

	if !cand.kind.IsOther() && cand.kind.Subcategory() == o.kind.Subcategory() {
		return e.pairFinding(cand, o, e.thresholds.SubcategoryColor,
			fmt.Sprintf("Same type (%s) and color (%s)", o.kind.DisplayName(), colorLabel(o))), true
	}
	return Finding{}, false
}

func (e *Engine) similarFindings(ctx context.Context, cand annotated, remaining []annotated) ([]Finding, TierStatus, error) {
	log := e.logger.WithFields(map[string]interface{}{
		"tier":       "similarity",
		"item":       cand.item.Name,
		"candidates": len(remaining),
	})
	if e.comparator == nil {
		log.Debug("no comparator configured")
		return nil, TierAbsent, nil
	}

	texts := make([]string, len(remaining))
	for i, o := range remaining {
		texts[i] = o.item.Describe()
	}
	scores, err := e.comparator.Compare(ctx, cand.item.Describe(), texts)
	if err != nil {
		if utils.CodeOf(err) == utils.ErrCodeCapabilityUnavailable {
			log.WithField("error", err.Error()).Debug("comparator unavailable")
			return nil, TierAbsent, nil
		}
		log.WithField("error", err.Error()).Warn("similarity tier failed, degrading to rule tiers")
		return nil, TierFailed, err
	}

	var findings []Finding
	for _, s := range scores {
		if s.Index < 0 || s.Index >= len(remaining) || s.Score < e.thresholds.Similar {
			continue
		}
		reason := s.Reason
		if reason == "" {
			reason = "Described alike by the similarity model"
		}
		findings = append(findings, e.pairFinding(cand, remaining[s.Index], s.Score, reason))
	}
	return findings, TierRan, nil
}

func (e *Engine) pairFinding(cand, o annotated, similarity float64, reason string) Finding {
	return Finding{
		GroupName:  strings.TrimSpace(cand.item.Name),
		Items:      []FindingItem{findingItem(cand), findingItem(o)},
		Kind:       KindSimilar,
		Similarity: &similarity,
		Reason:     reason,
	}
}

func (e *Engine) recordFindings(findings []Finding) {
	if e.metrics == nil {
		return
	}
	counts := make(map[Kind]int)
	for _, f := range findings {
		counts[f.Kind]++
	}
	for kind, n := range counts {
		e.metrics.RecordFindings(string(kind), n)
	}
}

// exactFindings emits one exact finding per color shared by two or more
// items of the name group, and the whole group as partial when it spans
// more than one color.
func exactFindings(cand annotated, group []annotated) []Finding {
	if len(group) < 2 {
		return nil
	}

	var order []string
	byColor := make(map[string][]annotated)
	for _, a := range group {
		if _, ok := byColor[a.color]; !ok {
			order = append(order, a.color)
		}
		byColor[a.color] = append(byColor[a.color], a)
	}

	name := strings.TrimSpace(cand.item.Name)
	var findings []Finding
	for _, key := range order {
		members := byColor[key]
		if len(members) < 2 {
			continue
		}
		f := Finding{GroupName: name, Kind: KindExact, Reason: "Same item in the same color"}
		for _, m := range members {
			f.Items = append(f.Items, findingItem(m))
		}
		findings = append(findings, f)
	}

	if len(order) > 1 {
		f := Finding{GroupName: name, Kind: KindPartial, Reason: "Same item in different colors"}
		for _, m := range group {
			f.Items = append(f.Items, findingItem(m))
		}
		findings = append(findings, f)
	}
	return findings
}

// rank orders exact, partial, then similar by descending similarity.
func rank(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := findings[i].Kind.rank(), findings[j].Kind.rank()
		if ri != rj {
			return ri < rj
		}
		return similarity(findings[i]) > similarity(findings[j])
	})
}

func similarity(f Finding) float64 {
	if f.Similarity == nil {
		return 0
	}
	return *f.Similarity
}

// annotated is an item with its normalized comparison keys.
type annotated struct {
	item  types.WardrobeItem
	name  string
	color string
	brand string
	kind  catalog.ProductType
}

func annotate(item types.WardrobeItem) annotated {
	kind := catalog.FromLabel(item.Type)
	if kind.IsOther() {
		kind = catalog.Detect(item.Name)
	}
	return annotated{
		item:  item,
		name:  NormalizeName(item.Name),
		color: color.Key(item.Color),
		brand: utils.FoldText(item.Brand),
		kind:  kind,
	}
}

// NormalizeName lower-cases name, trims it and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(utils.NormalizeSpaces(name))
}

func findingItem(a annotated) FindingItem {
	return FindingItem{
		ID:        a.item.ID,
		OwnerID:   a.item.OwnerID,
		OwnerName: a.item.OwnerName,
		Color:     colorLabel(a),
	}
}

func colorLabel(a annotated) string {
	if n, ok := color.Normalize(a.item.Color); ok {
		return n.String()
	}
	return strings.TrimSpace(a.item.Color)
}
