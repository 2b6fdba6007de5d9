package contentcache

import "fmt"

// Kind identifies what sort of AI-generated artifact a cache entry holds.
type Kind string

const (
	KindScenario    Kind = "scenario"
	KindModelAnswer Kind = "model_answer"
)

// Key identifies one artifact. The same key always resolves to the same
// committed content; regeneration only happens under a new variant seed.
type Key struct {
	Kind        Kind
	QuestionID  int
	PersonaID   string
	VariantSeed int
}

// String renders the durable cache key, e.g. "scenario:q4:skeptical_pcp:v0".
func (k Key) String() string {
	return fmt.Sprintf("%s:q%d:%s:v%d", k.Kind, k.QuestionID, k.PersonaID, k.VariantSeed)
}
