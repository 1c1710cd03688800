package duplicate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/DressCodex/internal/llm"
	"github.com/valpere/DressCodex/internal/utils"
)

type stubProvider struct {
	available bool
	content   string
	err       error
	last      llm.Request
}

func (p *stubProvider) Name() string    { return "stub" }
func (p *stubProvider) Available() bool { return p.available }
func (p *stubProvider) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	p.last = req
	return llm.Response{Content: p.content}, p.err
}

func TestLLMComparatorCompare(t *testing.T) {
	provider := &stubProvider{available: true, content: "```json\n" + `{"results": [
		{"index": 0, "score": 0.93, "reason": " same gown "},
		{"index": 1, "score": 1.7, "reason": "clamped"},
		{"index": 1, "score": 0.2, "reason": "duplicate index dropped"},
		{"index": 5, "score": 0.9, "reason": "out of range"},
		{"index": -1, "score": 0.9, "reason": "negative"}
	]}` + "\n```"}

	scores, err := NewLLMComparator(provider, nil).Compare(context.Background(), "Red gown", []string{"Long red dress", "Red maxi dress"})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, Score{Index: 0, Score: 0.93, Reason: "same gown"}, scores[0])
	assert.Equal(t, 1.0, scores[1].Score)

	assert.True(t, provider.last.JSON)
	assert.Contains(t, provider.last.UserPrompt, "Reference item: Red gown")
	assert.Contains(t, provider.last.UserPrompt, "[1] Red maxi dress")
}

func TestLLMComparatorAcceptsBareArray(t *testing.T) {
	provider := &stubProvider{available: true, content: `Here you go: [{"index": 0, "confidence": 0.8, "isDuplicate": true, "reason": "same"}]`}

	judgements, err := NewLLMComparator(provider, nil).Judge(context.Background(), "A", []string{"B"})
	require.NoError(t, err)
	require.Len(t, judgements, 1)
	assert.True(t, judgements[0].IsDuplicate)
	assert.Equal(t, 0.8, judgements[0].Confidence)
}

func TestLLMComparatorErrors(t *testing.T) {
	testCases := []struct {
		name     string
		provider llm.Provider
		code     utils.ErrorCode
	}{
		{"nil provider", nil, utils.ErrCodeCapabilityUnavailable},
		{"unconfigured provider", &stubProvider{}, utils.ErrCodeCapabilityUnavailable},
		{"malformed json", &stubProvider{available: true, content: "I think they are similar."}, utils.ErrCodeMalformedResponse},
		{"object without results", &stubProvider{available: true, content: `{"verdict": "similar"}`}, utils.ErrCodeMalformedResponse},
		{"provider error", &stubProvider{available: true, err: utils.NewError(utils.ErrCodeCapabilityFailed, "HTTP 500").Build()}, utils.ErrCodeCapabilityFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLLMComparator(tc.provider, nil).Compare(context.Background(), "A", []string{"B"})
			require.Error(t, err)
			assert.Equal(t, tc.code, utils.CodeOf(err))
		})
	}
}

func TestLLMComparatorPlainError(t *testing.T) {
	provider := &stubProvider{available: true, err: errors.New("dial tcp: refused")}
	_, err := NewLLMComparator(provider, nil).Judge(context.Background(), "A", []string{"B"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "refused"))
}
