package achievements

import "mslcoach/internal/store"

// Evaluate runs the rule table against a post-update progress snapshot and
// returns the achievements that just became true, in table order.
//
// Rules whose id is already in the unlocked set are skipped entirely — the
// set is append-only and an unlocked rule is never re-evaluated. Evaluate
// has no side effects; persisting the grown unlocked set is the caller's
// responsibility, atomically with the rest of the snapshot.
func Evaluate(p *store.UserProgress) []Achievement {
	var newly []Achievement
	for _, rule := range Rules {
		if p.HasUnlocked(rule.ID) {
			continue
		}
		if rule.Check(p) {
			newly = append(newly, rule)
		}
	}
	return newly
}

// WithStatus pairs every rule with whether it is unlocked for display.
type Status struct {
	Achievement
	Unlocked bool
}

// AllWithStatus returns the full table annotated against the given
// unlocked set, in table order.
func AllWithStatus(p *store.UserProgress) []Status {
	out := make([]Status, 0, len(Rules))
	for _, rule := range Rules {
		out = append(out, Status{Achievement: rule, Unlocked: p.HasUnlocked(rule.ID)})
	}
	return out
}
