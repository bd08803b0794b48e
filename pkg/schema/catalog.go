package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/models"
)

// Column headers of a per-entity schema export file.
const (
	colDisplayName     = "rst_DisplayName"
	colRequirementType = "rst_RequirementType"
	colTargets         = "dty_PtrTargetRectypeIDs"
	colDetailType      = "dty_Type"
	colVocabTerms      = "vocabTerms"
	colDetailName      = "dty_Name"
)

const enumDetailType = "enum"

var requiredHeaders = []string{colDisplayName, colRequirementType, colTargets, colDetailType, colVocabTerms}

// Warning records a non-fatal data-quality condition found while loading the export.
type Warning struct {
	Entity  string `json:"entity"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Catalog holds the normalized field requirement levels and controlled vocabularies of
// every entity of a schema export. A Catalog is immutable once loaded.
type Catalog struct {
	requirements map[string]map[string]models.RequirementLevel
	vocabularies map[string]map[string][]string
	warnings     []Warning
}

// LoadCatalog reads every per-entity file of dir. Requirement levels are kept only for
// the given levels; an empty list keeps all four. Vocabularies are kept for every
// enumerable field regardless of level.
func LoadCatalog(dir string, levels []models.RequirementLevel, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(levels) == 0 {
		levels = models.AllRequirementLevels
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSchemaDirMissing, dir)
		}
		return nil, fmt.Errorf("stat schema dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", apperrors.ErrSchemaDirMissing, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}

	c := &Catalog{
		requirements: make(map[string]map[string]models.RequirementLevel),
		vocabularies: make(map[string]map[string][]string),
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		entity := entityKey(strings.SplitN(entry.Name(), ".", 2)[0])
		path := filepath.Join(dir, entry.Name())
		if err := c.loadFile(path, entity, levels, logger); err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
	}

	logger.Info("Schema catalog loaded",
		zap.String("dir", dir),
		zap.Int("entities", len(c.requirements)),
		zap.Int("warnings", len(c.warnings)))

	return c, nil
}

func (c *Catalog) loadFile(path, entity string, levels []models.RequirementLevel, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty schema file")
		}
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return fmt.Errorf("missing column %q", h)
		}
	}

	requirements := make(map[string]models.RequirementLevel)
	vocabularies := make(map[string][]string)

	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}

		if isLayoutHeader(get(colDetailName), get(colDetailType)) {
			continue
		}

		targets, err := ParseTargetList(get(colTargets))
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		name := NormalizeFieldName(get(colDisplayName), len(targets) > 0)

		if level, err := models.ParseRequirementLevel(get(colRequirementType)); err == nil {
			if slices.Contains(levels, level) {
				requirements[name] = level
			}
		} else {
			logger.Debug("Skipping field with unrecognized requirement type",
				zap.String("entity", entity),
				zap.String("field", name),
				zap.String("requirement_type", get(colRequirementType)))
		}

		if strings.EqualFold(strings.TrimSpace(get(colDetailType)), enumDetailType) {
			terms, err := ParseVocabularyTerms(get(colVocabTerms))
			if err != nil {
				logger.Warn("Malformed vocabulary, treating as empty",
					zap.String("entity", entity),
					zap.String("field", name),
					zap.Error(err))
				c.warnings = append(c.warnings, Warning{Entity: entity, Field: name, Message: err.Error()})
				terms = nil
			}
			vocabularies[name] = terms
		}
	}

	c.requirements[entity] = requirements
	c.vocabularies[entity] = vocabularies
	return nil
}

// Entities returns the entity names of the catalog, sorted.
func (c *Catalog) Entities() []string {
	names := make([]string, 0, len(c.requirements))
	for name := range c.requirements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasEntity reports whether the export declared the entity.
func (c *Catalog) HasEntity(entity string) bool {
	_, ok := c.requirements[entityKey(entity)]
	return ok
}

// Requirement returns the requirement level of a field. The boolean is false when the
// export does not declare the field (or its level was filtered out).
func (c *Catalog) Requirement(entity, field string) (models.RequirementLevel, bool) {
	fields, ok := c.requirements[entityKey(entity)]
	if !ok {
		return "", false
	}
	level, ok := fields[field]
	return level, ok
}

// FieldsWithLevel returns the sorted fields of an entity declared at the given level.
func (c *Catalog) FieldsWithLevel(entity string, level models.RequirementLevel) []string {
	var fields []string
	for name, l := range c.requirements[entityKey(entity)] {
		if l == level {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

// Vocabulary returns the controlled vocabulary of a field. The boolean is false when the
// field is not enumerable; a malformed vocabulary is present but empty.
func (c *Catalog) Vocabulary(entity, field string) ([]string, bool) {
	fields, ok := c.vocabularies[entityKey(entity)]
	if !ok {
		return nil, false
	}
	terms, ok := fields[field]
	return slices.Clone(terms), ok
}

// VocabularyFields returns the sorted enumerable fields of an entity that have at least one term.
func (c *Catalog) VocabularyFields(entity string) []string {
	var fields []string
	for name, terms := range c.vocabularies[entityKey(entity)] {
		if len(terms) > 0 {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

// Warnings returns the non-fatal conditions recorded while loading.
func (c *Catalog) Warnings() []Warning {
	return slices.Clone(c.warnings)
}

func entityKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
