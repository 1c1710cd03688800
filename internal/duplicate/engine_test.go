package duplicate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/pkg/types"
)

type fakeComparator struct {
	scores     []Score
	judgements []Judgement
	err        error

	compareCalls int
	lastItem     string
	lastBatch    []string
}

func (f *fakeComparator) Compare(ctx context.Context, item string, candidates []string) ([]Score, error) {
	f.compareCalls++
	f.lastItem = item
	f.lastBatch = candidates
	return f.scores, f.err
}

func (f *fakeComparator) Judge(ctx context.Context, item string, candidates []string) ([]Judgement, error) {
	return f.judgements, f.err
}

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithLogger(utils.NewNopLogger())}, opts...)...)
}

func item(id, name, color string) types.WardrobeItem {
	return types.WardrobeItem{ID: id, Name: name, Color: color, OwnerID: "owner-" + id, OwnerName: "Guest " + id}
}

func ids(f Finding) []string {
	out := make([]string, len(f.Items))
	for i, it := range f.Items {
		out[i] = it.ID
	}
	return out
}

func TestExactTierIsCaseInsensitive(t *testing.T) {
	engine := newTestEngine()
	candidate := item("c", "  Red   Midi Dress ", "red")
	existing := []types.WardrobeItem{
		item("a", "red midi dress", "Rojo"),
		item("b", "Blue jeans", "blue"),
	}

	findings := engine.FindDuplicates(context.Background(), candidate, existing)
	require.Len(t, findings, 1)
	assert.Equal(t, KindExact, findings[0].Kind)
	assert.Equal(t, []string{"c", "a"}, ids(findings[0]))
	assert.Equal(t, "Red   Midi Dress", findings[0].GroupName)
	assert.Equal(t, "Red", findings[0].Items[1].Color)
	assert.Nil(t, findings[0].Similarity)
}

func TestExactAndPartialCoEmission(t *testing.T) {
	engine := newTestEngine()
	candidate := item("c", "Satin slip dress", "black")
	existing := []types.WardrobeItem{
		item("a", "satin slip dress", "Negro"),
		item("b", "Satin Slip Dress", "emerald"),
	}

	findings := engine.FindDuplicates(context.Background(), candidate, existing)
	require.Len(t, findings, 2)

	assert.Equal(t, KindExact, findings[0].Kind)
	assert.Equal(t, []string{"c", "a"}, ids(findings[0]))

	assert.Equal(t, KindPartial, findings[1].Kind)
	assert.Equal(t, []string{"c", "a", "b"}, ids(findings[1]))
}

func TestExactTierMatchesColorAcrossLanguages(t *testing.T) {
	testCases := []struct {
		name      string
		candidate string
		existing  string
	}{
		{"english phrase vs spanish", "Navy Blue", "azul marino"},
		{"spanish vs english phrase", "azul marino", "Navy Blue"},
		{"french vs english", "bleu marine", "navy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			findings := newTestEngine().FindDuplicates(context.Background(),
				item("c", "Vestido midi", tc.candidate),
				[]types.WardrobeItem{item("a", "vestido midi", tc.existing)})

			require.Len(t, findings, 1)
			assert.Equal(t, KindExact, findings[0].Kind)
			assert.Equal(t, []string{"c", "a"}, ids(findings[0]))
		})
	}
}

func TestPartialWithoutExact(t *testing.T) {
	engine := newTestEngine()
	findings := engine.FindDuplicates(context.Background(),
		item("c", "Linen shirt", "white"),
		[]types.WardrobeItem{item("a", "linen shirt", "navy")})

	require.Len(t, findings, 1)
	assert.Equal(t, KindPartial, findings[0].Kind)
	assert.Equal(t, []string{"c", "a"}, ids(findings[0]))
}

func TestRuleTier(t *testing.T) {
	engine := newTestEngine()
	candidate := types.WardrobeItem{ID: "c", Name: "Vestido midi", Color: "rojo", Brand: "Zara"}
	existing := []types.WardrobeItem{
		{ID: "brand", Name: "Falda plisada", Color: "Red", Brand: "ZARA"},
		{ID: "type", Name: "Wrap dress", Color: "red", Brand: "Mango"},
		{ID: "other-color", Name: "Robe longue", Color: "bleu", Brand: "Zara"},
		{ID: "no-match", Name: "Sneakers", Color: "white"},
	}

	report := engine.Detect(context.Background(), candidate, existing)
	require.Len(t, report.Findings, 2)
	assert.Equal(t, TierAbsent, report.Similarity)

	byID := map[string]Finding{}
	for _, f := range report.Findings {
		assert.Equal(t, KindSimilar, f.Kind)
		assert.NotEmpty(t, f.Reason)
		byID[f.Items[1].ID] = f
	}
	require.Contains(t, byID, "brand")
	require.Contains(t, byID, "type")
	assert.InDelta(t, 0.8, *byID["brand"].Similarity, 1e-9)
	assert.InDelta(t, 0.7, *byID["type"].Similarity, 1e-9)
	assert.Equal(t, "brand", report.Findings[0].Items[1].ID, "higher confidence ranks first")
}

func TestSimilarityTier(t *testing.T) {
	comparator := &fakeComparator{scores: []Score{
		{Index: 0, Score: 0.92, Reason: "Both are long red evening gowns"},
		{Index: 1, Score: 0.3, Reason: "Different garment"},
		{Index: 1, Score: 0.6, Reason: "threshold is inclusive"},
	}}
	engine := newTestEngine(WithComparator(comparator))
	candidate := item("c", "Robe longue rouge", "rouge")
	existing := []types.WardrobeItem{
		item("a", "Long red evening gown", ""),
		item("b", "Cropped denim jacket", ""),
		item("exact", "robe longue rouge", "red"),
	}

	report := engine.Detect(context.Background(), candidate, existing)
	assert.Equal(t, TierRan, report.Similarity)
	assert.Equal(t, 1, comparator.compareCalls, "one batched call")
	assert.Len(t, comparator.lastBatch, 2, "exact matches are not sent to the comparator")

	require.Len(t, report.Findings, 3)
	assert.Equal(t, KindExact, report.Findings[0].Kind)
	assert.Equal(t, KindSimilar, report.Findings[1].Kind)
	assert.Equal(t, "Both are long red evening gowns", report.Findings[1].Reason)
	assert.Equal(t, []string{"c", "a"}, ids(report.Findings[1]))
	assert.InDelta(t, 0.6, *report.Findings[2].Similarity, 1e-9)
}

func TestSimilarityTierDegrades(t *testing.T) {
	candidate := item("c", "Black blazer", "black")
	existing := []types.WardrobeItem{
		item("a", "black blazer", "black"),
		item("b", "Tailored jacket", "charcoal"),
	}

	testCases := []struct {
		name   string
		opts   []Option
		status TierStatus
	}{
		{"no comparator", nil, TierAbsent},
		{"comparator unavailable", []Option{WithComparator(&fakeComparator{
			err: utils.NewError(utils.ErrCodeCapabilityUnavailable, "circuit open").Build(),
		})}, TierAbsent},
		{"comparator error", []Option{WithComparator(&fakeComparator{err: errors.New("connection reset")})}, TierFailed},
		{"malformed response", []Option{WithComparator(&fakeComparator{
			err: utils.NewError(utils.ErrCodeMalformedResponse, "bad json").Build(),
		})}, TierFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			report := newTestEngine(tc.opts...).Detect(context.Background(), candidate, existing)
			assert.Equal(t, tc.status, report.Similarity)
			require.Len(t, report.Findings, 1, "exact tier still runs")
			assert.Equal(t, KindExact, report.Findings[0].Kind)
		})
	}
}

func TestDetectSkipsComparatorWhenNothingRemains(t *testing.T) {
	comparator := &fakeComparator{}
	report := newTestEngine(WithComparator(comparator)).Detect(context.Background(),
		item("c", "Dress", "red"), []types.WardrobeItem{item("a", "dress", "red")})

	assert.Equal(t, TierSkipped, report.Similarity)
	assert.Zero(t, comparator.compareCalls)
}

func TestFindDuplicatesNoExisting(t *testing.T) {
	findings := newTestEngine().FindDuplicates(context.Background(), item("c", "Dress", "red"), nil)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestCheckDuplicate(t *testing.T) {
	comparator := &fakeComparator{judgements: []Judgement{
		{Index: 0, Confidence: 0.75, IsDuplicate: true, Reason: "same cut"},
		{Index: 1, Confidence: 0.95, IsDuplicate: true, Reason: "same product"},
		{Index: 2, Confidence: 0.99, IsDuplicate: false, Reason: "different"},
		{Index: 3, Confidence: 0.69, IsDuplicate: true, Reason: "weak"},
		{Index: 9, Confidence: 1, IsDuplicate: true},
	}}
	engine := newTestEngine(WithComparator(comparator))
	existing := []types.WardrobeItem{
		item("a", "A", ""), item("b", "B", ""), item("c", "C", ""), item("d", "D", ""),
	}

	verdicts := engine.CheckDuplicate(context.Background(), item("x", "X", ""), existing)
	require.Len(t, verdicts, 2)
	assert.Equal(t, "b", verdicts[0].ItemID)
	assert.Equal(t, DuplicateExact, verdicts[0].DuplicateType)
	assert.Equal(t, "a", verdicts[1].ItemID)
	assert.Equal(t, DuplicateSimilar, verdicts[1].DuplicateType)
	assert.True(t, verdicts[1].IsDuplicate)
}

func TestCheckDuplicateFailureIsEmpty(t *testing.T) {
	engine := newTestEngine(WithComparator(&fakeComparator{err: errors.New("timeout")}))
	verdicts := engine.CheckDuplicate(context.Background(), item("x", "X", ""), []types.WardrobeItem{item("a", "A", "")})
	assert.NotNil(t, verdicts)
	assert.Empty(t, verdicts)

	assert.Empty(t, newTestEngine().CheckDuplicate(context.Background(), item("x", "X", ""), []types.WardrobeItem{item("a", "A", "")}))
}

func TestDetectEventPairs(t *testing.T) {
	engine := newTestEngine()
	items := []types.WardrobeItem{
		item("1", "Red dress", "red"),
		item("2", "red dress", "red"),
		item("3", "Red Dress", "blue"),
		item("4", "Jeans", "blue"),
	}

	findings := engine.DetectEvent(context.Background(), items)

	var pairs [][]string
	for _, f := range findings {
		pairs = append(pairs, append([]string{string(f.Kind)}, ids(f)...))
	}
	assert.Equal(t, [][]string{
		{"exact", "1", "2"},
		{"partial", "1", "3"},
		{"partial", "2", "3"},
	}, pairs)
}

func TestDetectEventCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	findings := newTestEngine().DetectEvent(ctx, []types.WardrobeItem{item("1", "a", ""), item("2", "a", "")})
	assert.Empty(t, findings)
}

func TestEngineRecordsFindings(t *testing.T) {
	metrics := monitoring.NewMetricsManager(monitoring.MetricsConfig{})
	engine := newTestEngine(WithMetrics(metrics))
	engine.FindDuplicates(context.Background(), item("c", "Top", "red"),
		[]types.WardrobeItem{item("a", "top", "red"), item("b", "top", "green")})

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	kinds := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "dresscodex_duplicate_findings_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			kinds[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"exact": 1, "partial": 1}, kinds)
}

func TestThresholdsDefaults(t *testing.T) {
	engine := newTestEngine(WithThresholds(Thresholds{Similar: 0.75}))
	got := engine.Thresholds()
	assert.Equal(t, 0.75, got.Similar)
	assert.Equal(t, 0.7, got.Verdict)
	assert.Equal(t, 0.9, got.ExactVerdict)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "red midi dress", NormalizeName("  Red \t Midi  DRESS "))
}
