// Package classify implements static, rule-based hunk classification
// and defines the interfaces external classifiers plug into.
package classify

import (
	"context"

	"github.com/sprite-ai/vouch/internal/model"
	"github.com/sprite-ai/vouch/internal/review"
)

// Classifier labels hunks. Implementations may call external services;
// ids they could not label go in the skipped slice.
type Classifier interface {
	Classify(ctx context.Context, hunks []model.Hunk) (results map[string]model.LabelResult, skipped []string, err error)
}

// Grouper organizes hunks into review groups with an overall summary.
type Grouper interface {
	Group(ctx context.Context, hunks []model.Hunk) (groups []model.HunkGroup, summary string, err error)
}

// Static classifies hunks using rule-based pattern matching, no I/O.
// Only confidently classified hunks appear in the result; everything
// uncertain is omitted.
func Static(hunks []model.Hunk) map[string]model.LabelResult {
	out := make(map[string]model.LabelResult)
	for i := range hunks {
		if res, ok := classifyHunk(&hunks[i]); ok {
			out[hunks[i].ID] = res
		}
	}
	return out
}

// Apply merges a classification result into the session. Labels are
// replaced, explicit review decisions are left untouched.
func Apply(s *review.Session, results map[string]model.LabelResult, skipped []string, via model.ClassifiedVia) {
	s.RecordClassification(results, skipped, via)
}

// rules are ordered cheapest first; the first match wins.
var rules = []func(*model.Hunk) (model.LabelResult, bool){
	classifyMoved,
	classifyLockfile,
	classifyEmptyFile,
	classifyWhitespace,
	classifyLineLength,
	classifyStyle,
	classifyComments,
	classifyImports,
}

func classifyHunk(h *model.Hunk) (model.LabelResult, bool) {
	for _, rule := range rules {
		if res, ok := rule(h); ok {
			return res, true
		}
	}
	return model.LabelResult{}, false
}
