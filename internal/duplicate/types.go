package duplicate

// Kind classifies a Finding.
type Kind string

const (
	// KindExact groups items with the same normalized name and color.
	KindExact Kind = "exact"
	// KindPartial groups items with the same normalized name across colors.
	KindPartial Kind = "partial"
	// KindSimilar groups items that are not name-identical but were judged
	// alike by a rule or by the comparator. Always carries a Reason.
	KindSimilar Kind = "similar"
)

func (k Kind) rank() int {
	switch k {
	case KindExact:
		return 0
	case KindPartial:
		return 1
	default:
		return 2
	}
}

// FindingItem identifies one item of a Finding.
type FindingItem struct {
	ID        string `json:"id"`
	OwnerID   string `json:"ownerId,omitempty"`
	OwnerName string `json:"ownerName,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Finding is a group of items that look like the same garment.
type Finding struct {
	GroupName  string        `json:"groupName"`
	Items      []FindingItem `json:"items"`
	Kind       Kind          `json:"kind"`
	Similarity *float64      `json:"similarity,omitempty"`
	Reason     string        `json:"reason,omitempty"`
}

// DuplicateType is the strength of a Verdict.
type DuplicateType string

const (
	DuplicateExact   DuplicateType = "exact"
	DuplicateSimilar DuplicateType = "similar"
)

// Verdict is the comparator's binary duplicate decision for one item.
type Verdict struct {
	ItemID        string        `json:"itemId"`
	Confidence    float64       `json:"confidence"`
	IsDuplicate   bool          `json:"isDuplicate"`
	DuplicateType DuplicateType `json:"duplicateType"`
	Reason        string        `json:"reason,omitempty"`
}

// TierStatus records what happened to the similarity tier of a detection.
type TierStatus string

const (
	// TierRan means the comparator answered.
	TierRan TierStatus = "ran"
	// TierSkipped means the earlier tiers left nothing to compare.
	TierSkipped TierStatus = "skipped"
	// TierAbsent means no comparator is configured or it is unavailable.
	TierAbsent TierStatus = "absent"
	// TierFailed means the comparator errored or answered malformed JSON.
	TierFailed TierStatus = "failed"
)

// Report is the result of Engine.Detect.
type Report struct {
	Findings   []Finding  `json:"findings"`
	Similarity TierStatus `json:"similarityTier"`
	// Error is the comparator failure, when Similarity is TierFailed.
	Error string `json:"error,omitempty"`
}

// Score is the comparator's similarity answer for one candidate.
type Score struct {
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Judgement is the comparator's duplicate answer for one candidate.
type Judgement struct {
	Index       int     `json:"index"`
	Confidence  float64 `json:"confidence"`
	IsDuplicate bool    `json:"isDuplicate"`
	Reason      string  `json:"reason"`
}
