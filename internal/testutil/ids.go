package testutil

// DefaultRunID is returned by a FixedIDGenerator built with an empty ID.
const DefaultRunID = "00000000-0000-7000-8000-000000000001"

// FixedIDGenerator hands out the same run ID every time, so reports produced
// in tests can be compared against golden files.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator for id, or DefaultRunID when id is
// empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
