package models

import "fmt"

// JoinKind describes how one join step is resolved.
type JoinKind string

const (
	// JoinDirect is an equality between a link column and an identifier.
	JoinDirect JoinKind = "direct"
	// JoinMulti is a set-membership test against an array-typed link column.
	// Any MULTI step forces DISTINCT counting on the audited entity's identifier.
	JoinMulti JoinKind = "multi"
)

// LinkOwner names which side of a join step carries the link column.
type LinkOwner string

const (
	// LinkOnSource means the link column lives on the entity the step starts from.
	LinkOnSource LinkOwner = "source"
	// LinkOnTarget means the link column lives on the step's target entity.
	LinkOnTarget LinkOwner = "target"
)

// JoinStep is one hop of a join chain from an entity towards the language-bearing root.
type JoinStep struct {
	Target string    `yaml:"target" json:"target"`
	Kind   JoinKind  `yaml:"kind" json:"kind"`
	Column string    `yaml:"column" json:"column"`
	Owner  LinkOwner `yaml:"owner,omitempty" json:"owner,omitempty"`
}

// LinkOwner returns the side carrying the link column, applying the per-kind default:
// DIRECT steps default to a column on the source, MULTI steps to an array on the target.
func (s JoinStep) LinkOwner() LinkOwner {
	if s.Owner != "" {
		return s.Owner
	}
	if s.Kind == JoinMulti {
		return LinkOnTarget
	}
	return LinkOnSource
}

// Validate checks that the step is structurally complete.
func (s JoinStep) Validate() error {
	if s.Target == "" {
		return fmt.Errorf("join step has no target")
	}
	if s.Column == "" {
		return fmt.Errorf("join step to %q has no link column", s.Target)
	}
	switch s.Kind {
	case JoinDirect, JoinMulti:
	default:
		return fmt.Errorf("join step to %q has unknown kind %q", s.Target, s.Kind)
	}
	switch s.LinkOwner() {
	case LinkOnSource, LinkOnTarget:
	default:
		return fmt.Errorf("join step to %q has unknown link owner %q", s.Target, s.Owner)
	}
	return nil
}

// EntityType describes one record type of the warehouse and how it is scoped to a corpus.
type EntityType struct {
	// Name is the catalog name of the entity (schema export file stem), e.g. "witness".
	Name string `yaml:"name" json:"name"`
	// StorageName is the warehouse table name, e.g. "Witness" or "TextTable".
	StorageName string `yaml:"storage_name" json:"storage_name"`
	// IsCorpus marks entities transitively scoped by the root's language attribute.
	IsCorpus bool `yaml:"corpus" json:"is_corpus"`
	// LanguageColumn is set when the entity carries the language attribute itself.
	LanguageColumn string `yaml:"language_column,omitempty" json:"language_column,omitempty"`
	// HasReviewStatus marks entities exposing the action-required template.
	HasReviewStatus bool `yaml:"review_status" json:"has_review_status"`
	// Chain is the ordered list of join steps from this entity to a language-bearing entity.
	Chain []JoinStep `yaml:"chain,omitempty" json:"chain,omitempty"`
}

// IsLanguageBearing returns true if the entity carries the language attribute itself.
func (e *EntityType) IsLanguageBearing() bool {
	return e.LanguageColumn != ""
}

// EntityStatus describes an entity table: a registered entity and whether the warehouse
// holds its table, or a warehouse table no registered entity maps to.
type EntityStatus struct {
	Name            string `json:"name,omitempty"`
	StorageName     string `json:"storage_name"`
	IsCorpus        bool   `json:"is_corpus"`
	HasReviewStatus bool   `json:"has_review_status"`
	Present         bool   `json:"present"`
	Registered      bool   `json:"registered"`
}
