// Package joingraph describes how every entity type of the warehouse is reachable from a
// language-bearing entity and generates the count query templates built on those chains.
package joingraph

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/models"
)

// Registry is an immutable catalog of entity types. It is validated once at construction.
type Registry struct {
	entities  []*models.EntityType
	byName    map[string]*models.EntityType
	byStorage map[string]*models.EntityType
}

// graphFile is the on-disk layout of a join graph override.
type graphFile struct {
	Entities []models.EntityType `yaml:"entities"`
}

// NewRegistry validates the entity definitions and builds a registry over copies of them.
func NewRegistry(entities []models.EntityType) (*Registry, error) {
	r := &Registry{
		byName:    make(map[string]*models.EntityType, len(entities)),
		byStorage: make(map[string]*models.EntityType, len(entities)),
	}

	for i := range entities {
		e := entities[i]
		e.Chain = slices.Clone(e.Chain)
		if e.Name == "" || e.StorageName == "" {
			return nil, fmt.Errorf("%w: entity %d needs a name and a storage name", apperrors.ErrInvalidJoinGraph, i)
		}
		key := nameKey(e.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate entity %q", apperrors.ErrInvalidJoinGraph, e.Name)
		}
		storageKey := nameKey(e.StorageName)
		if _, dup := r.byStorage[storageKey]; dup {
			return nil, fmt.Errorf("%w: duplicate storage name %q", apperrors.ErrInvalidJoinGraph, e.StorageName)
		}
		r.entities = append(r.entities, &e)
		r.byName[key] = &e
		r.byStorage[storageKey] = &e
	}

	for _, e := range r.entities {
		if err := r.validate(e); err != nil {
			return nil, fmt.Errorf("%w: entity %q: %v", apperrors.ErrInvalidJoinGraph, e.Name, err)
		}
	}
	return r, nil
}

func (r *Registry) validate(e *models.EntityType) error {
	for _, step := range e.Chain {
		if err := step.Validate(); err != nil {
			return err
		}
		if _, ok := r.byName[nameKey(step.Target)]; !ok {
			return fmt.Errorf("join step targets unknown entity %q", step.Target)
		}
	}

	if !e.IsCorpus {
		if len(e.Chain) > 0 {
			return fmt.Errorf("non-corpus entity declares a join chain")
		}
		return nil
	}
	if len(e.Chain) == 0 {
		if !e.IsLanguageBearing() {
			return fmt.Errorf("corpus entity has no join chain and no language column")
		}
		return nil
	}
	if e.IsLanguageBearing() {
		return fmt.Errorf("language-bearing entity declares a join chain")
	}
	last := r.byName[nameKey(e.Chain[len(e.Chain)-1].Target)]
	if !last.IsLanguageBearing() {
		return fmt.Errorf("join chain ends at %q, which carries no language column", last.Name)
	}
	return nil
}

// Default returns the registry of the compiled-in LOSTMA graph.
func Default() *Registry {
	r, err := NewRegistry(DefaultEntities())
	if err != nil {
		panic(fmt.Sprintf("default join graph is invalid: %v", err))
	}
	return r
}

// LoadFile reads a YAML join graph. An empty path returns the default graph.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read join graph: %w", err)
	}
	var f graphFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", apperrors.ErrInvalidJoinGraph, path, err)
	}
	if len(f.Entities) == 0 {
		return nil, fmt.Errorf("%w: %s declares no entities", apperrors.ErrInvalidJoinGraph, path)
	}
	return NewRegistry(f.Entities)
}

// Lookup resolves an entity by catalog name, plural or singular form, or storage name.
func (r *Registry) Lookup(name string) (*models.EntityType, bool) {
	key := nameKey(name)
	if e, ok := r.byName[key]; ok {
		return e, true
	}
	if e, ok := r.byName[inflection.Singular(key)]; ok {
		return e, true
	}
	e, ok := r.byStorage[key]
	return e, ok
}

// Resolve is Lookup returning ErrUnknownEntity when the name matches nothing.
func (r *Registry) Resolve(name string) (*models.EntityType, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownEntity, name)
	}
	return e, nil
}

// Entities returns every entity in declaration order.
func (r *Registry) Entities() []*models.EntityType {
	return slices.Clone(r.entities)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
