// Package matching associates trending ranking entries with posts by model
// and by normalized keyword containment.
package matching

import "strings"

var separators = strings.NewReplacer(" ", "", "-", "", "_", "")

// Normalize lowercases s and removes spaces, hyphens and underscores.
func Normalize(s string) string {
	return separators.Replace(strings.ToLower(s))
}

// Candidate is the part of a post a KeywordRule looks at.
type Candidate struct {
	ModelID     *uint
	ModelDetail string
	ModelEtc    string
}

// KeywordRule selects the posts that belong to a trending entry: posts of
// RelatedModelID, optionally narrowed to those whose model detail or custom
// model name contains one of the keywords.
type KeywordRule struct {
	RelatedModelID   *uint
	UseExactMatching bool
	DetailContains   string
	EtcContains      string
}

// Keywords returns the normalized keywords. Blank keywords are "".
func (r KeywordRule) Keywords() (detail, etc string) {
	return Normalize(r.DetailContains), Normalize(r.EtcContains)
}

// Narrows reports whether the keyword branch applies on top of the model filter.
func (r KeywordRule) Narrows() bool {
	if !r.UseExactMatching {
		return false
	}
	detail, etc := r.Keywords()
	return detail != "" || etc != ""
}

// Matches evaluates the rule against one post.
func (r KeywordRule) Matches(c Candidate) bool {
	if r.RelatedModelID == nil || c.ModelID == nil || *c.ModelID != *r.RelatedModelID {
		return false
	}
	if !r.Narrows() {
		return true
	}

	detail, etc := r.Keywords()
	if detail != "" && strings.Contains(Normalize(c.ModelDetail), detail) {
		return true
	}
	return etc != "" && strings.Contains(Normalize(c.ModelEtc), etc)
}
