package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"GPT-4 Sonnet", "gpt4sonnet"},
		{"so-nnet", "sonnet"},
		{"  Claude_3.5 ", "claude3.5"},
		{"클로드 소네트", "클로드소네트"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestKeywordRuleMatches(t *testing.T) {
	post := Candidate{ModelID: uintPtr(7), ModelDetail: "GPT-4 Sonnet"}

	t.Run("nil related model matches nothing", func(t *testing.T) {
		assert.False(t, KeywordRule{}.Matches(post))
	})

	t.Run("different model never matches", func(t *testing.T) {
		rule := KeywordRule{RelatedModelID: uintPtr(8)}
		assert.False(t, rule.Matches(post))
	})

	t.Run("exact matching off uses only the model", func(t *testing.T) {
		rule := KeywordRule{RelatedModelID: uintPtr(7), DetailContains: "nothing-like-it"}
		assert.True(t, rule.Matches(post))
		assert.True(t, rule.Matches(Candidate{ModelID: uintPtr(7)}))
	})

	t.Run("both keywords blank falls back to the model", func(t *testing.T) {
		rule := KeywordRule{RelatedModelID: uintPtr(7), UseExactMatching: true, DetailContains: " - _", EtcContains: ""}
		assert.False(t, rule.Narrows())
		assert.True(t, rule.Matches(Candidate{ModelID: uintPtr(7)}))
	})

	t.Run("keyword spelling variants all match", func(t *testing.T) {
		for _, kw := range []string{"sonnet", "SONNET", "sonnet ", "so-nnet", "so_nnet", "4 sonnet"} {
			rule := KeywordRule{RelatedModelID: uintPtr(7), UseExactMatching: true, DetailContains: kw}
			assert.True(t, rule.Matches(post), kw)
		}
	})

	t.Run("keywords are OR'ed", func(t *testing.T) {
		rule := KeywordRule{RelatedModelID: uintPtr(7), UseExactMatching: true, DetailContains: "opus", EtcContains: "mine"}
		assert.False(t, rule.Matches(post))
		assert.True(t, rule.Matches(Candidate{ModelID: uintPtr(7), ModelEtc: "Mine-v2"}))
		assert.True(t, rule.Matches(Candidate{ModelID: uintPtr(7), ModelDetail: "Claude Opus"}))
	})

	t.Run("blank keyword branch is dropped", func(t *testing.T) {
		rule := KeywordRule{RelatedModelID: uintPtr(7), UseExactMatching: true, EtcContains: "custom"}
		assert.False(t, rule.Matches(Candidate{ModelID: uintPtr(7), ModelDetail: "anything"}))
		assert.True(t, rule.Matches(Candidate{ModelID: uintPtr(7), ModelEtc: "My Custom"}))
	})
}
