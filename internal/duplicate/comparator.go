package duplicate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
)

// Comparator is the external similarity capability. Both calls are
// batched: one request per invocation, covering every candidate.
// Implementations return a CAPABILITY_UNAVAILABLE error when they cannot
// be used at all.
type Comparator interface {
	// Compare scores each candidate's similarity to item in [0,1].
	Compare(ctx context.Context, item string, candidates []string) ([]Score, error)
	// Judge decides whether each candidate is a duplicate of item.
	Judge(ctx context.Context, item string, candidates []string) ([]Judgement, error)
}

const compareSystemPrompt = `You compare clothing items for a group event where guests want to avoid wearing the same thing.
Items may be described in English, Spanish, French or Italian and use different naming conventions.
Answer with ONE JSON object and nothing else:
{"results": [{"index": <candidate index>, "score": <0..1 similarity>, "reason": "<short reason>"}]}
Score 1 for the same garment, 0.6 or more for garments that would look alike when worn, lower otherwise.
Include every candidate exactly once.`

const judgeSystemPrompt = `You decide whether clothing items are duplicates of a reference item, i.e. the same garment
possibly described in another language or with partial details.
Answer with ONE JSON object and nothing else:
{"results": [{"index": <candidate index>, "confidence": <0..1>, "isDuplicate": <true|false>, "reason": "<short reason>"}]}
Include every candidate exactly once.`

// LLMComparator implements Comparator over a language model provider.
type LLMComparator struct {
	provider  llm.Provider
	metrics   *monitoring.MetricsManager
	maxTokens int
}

// NewLLMComparator creates a comparator over provider. metrics may be nil.
func NewLLMComparator(provider llm.Provider, metrics *monitoring.MetricsManager) *LLMComparator {
	return &LLMComparator{provider: provider, metrics: metrics, maxTokens: 1024}
}

// Compare implements Comparator.
func (c *LLMComparator) Compare(ctx context.Context, item string, candidates []string) ([]Score, error) {
	var parsed resultList[Score]
	if err := c.ask(ctx, "similarity", compareSystemPrompt, item, candidates, &parsed); err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(parsed))
	seen := make(map[int]bool, len(parsed))
	for _, s := range parsed {
		if s.Index < 0 || s.Index >= len(candidates) || seen[s.Index] {
			continue
		}
		seen[s.Index] = true
		s.Score = clamp(s.Score)
		s.Reason = strings.TrimSpace(s.Reason)
		scores = append(scores, s)
	}
	return scores, nil
}

// Judge implements Comparator.
func (c *LLMComparator) Judge(ctx context.Context, item string, candidates []string) ([]Judgement, error) {
	var parsed resultList[Judgement]
	if err := c.ask(ctx, "duplicate_verdict", judgeSystemPrompt, item, candidates, &parsed); err != nil {
		return nil, err
	}

	judgements := make([]Judgement, 0, len(parsed))
	seen := make(map[int]bool, len(parsed))
	for _, j := range parsed {
		if j.Index < 0 || j.Index >= len(candidates) || seen[j.Index] {
			continue
		}
		seen[j.Index] = true
		j.Confidence = clamp(j.Confidence)
		j.Reason = strings.TrimSpace(j.Reason)
		judgements = append(judgements, j)
	}
	return judgements, nil
}

func (c *LLMComparator) ask(ctx context.Context, capability, system, item string, candidates []string, v interface{}) error {
	if c.provider == nil || !c.provider.Available() {
		c.metrics.RecordCapabilityCall(capability, "absent")
		return utils.NewError(utils.ErrCodeCapabilityUnavailable, "no language model configured").
			WithoutStackTrace().Build()
	}

	resp, err := c.provider.Generate(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   buildPrompt(item, candidates),
		MaxTokens:    c.maxTokens,
		JSON:         true,
	})
	if err != nil {
		outcome := "failed"
		if utils.CodeOf(err) == utils.ErrCodeCapabilityUnavailable {
			outcome = "absent"
		}
		c.metrics.RecordCapabilityCall(capability, outcome)
		return err
	}

	if err := llm.ParseJSON(resp.Content, v); err != nil {
		c.metrics.RecordCapabilityCall(capability, "malformed")
		return err
	}
	c.metrics.RecordCapabilityCall(capability, "ok")
	return nil
}

func buildPrompt(item string, candidates []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reference item: %s\n\nCandidates:\n", item)
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "[%d] %s\n", i, candidate)
	}
	return b.String()
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// resultList accepts both a bare JSON array and {"results": [...]}.
type resultList[T any] []T

func (r *resultList[T]) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*r = items
		return nil
	}

	var wrapper struct {
		Results *[]T `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if wrapper.Results == nil {
		return fmt.Errorf("response has no results")
	}
	*r = *wrapper.Results
	return nil
}
