package joingraph

import (
	"fmt"
	"strings"

	"github.com/lostma-project/lostma-audit/pkg/models"
	"github.com/lostma-project/lostma-audit/pkg/schema"
	auditsql "github.com/lostma-project/lostma-audit/pkg/sql"
)

const (
	// ReviewStatusColumn is the review-status field tested by the action-required count.
	ReviewStatusColumn = "review_status"
	// ActionRequiredStatus is the review-status value marking outstanding editorial work.
	ActionRequiredStatus = "Action required"
)

// QueryTemplate generates the count statements of one entity, optionally scoped to a
// language. The audited entity is always aliased t0; step i of the chain joins t(i+1).
type QueryTemplate struct {
	entity   *models.EntityType
	dialect  auditsql.Dialect
	language string
	scoped   bool
	distinct bool
	from     string
	scope    string
}

// Template builds the query template of an entity. Non-corpus entities, and corpus
// entities analysed without a language, get the degenerate template: the whole table,
// no joins and no language parameter.
func (r *Registry) Template(entity *models.EntityType, dialect auditsql.Dialect, language string) (*QueryTemplate, error) {
	if err := auditsql.CheckLanguage(language); err != nil {
		return nil, err
	}

	t := &QueryTemplate{
		entity:   entity,
		dialect:  dialect,
		language: language,
		scoped:   entity.IsCorpus && language != "",
	}

	var from strings.Builder
	from.WriteString(auditsql.QuoteIdentifier(entity.StorageName))
	from.WriteString(" t0")

	if !t.scoped {
		t.from = from.String()
		return t, nil
	}

	root := entity
	for i, step := range entity.Chain {
		target, ok := r.Lookup(step.Target)
		if !ok {
			return nil, fmt.Errorf("join step of %q targets unknown entity %q", entity.Name, step.Target)
		}
		source, alias := fmt.Sprintf("t%d", i), fmt.Sprintf("t%d", i+1)
		fmt.Fprintf(&from, " INNER JOIN %s %s ON %s",
			auditsql.QuoteIdentifier(target.StorageName), alias, t.joinCondition(step, source, alias))
		if step.Kind == models.JoinMulti || step.LinkOwner() == models.LinkOnTarget {
			t.distinct = true
		}
		root = target
	}

	t.from = from.String()
	t.scope = auditsql.Column(fmt.Sprintf("t%d", len(entity.Chain)), root.LanguageColumn)
	return t, nil
}

// joinCondition renders the ON clause of one step from alias source to alias target.
func (t *QueryTemplate) joinCondition(step models.JoinStep, source, target string) string {
	sourceID := auditsql.Column(source, schema.IdentifierColumn)
	targetID := auditsql.Column(target, schema.IdentifierColumn)

	switch {
	case step.Kind == models.JoinMulti && step.LinkOwner() == models.LinkOnTarget:
		return t.dialect.ArrayContains(auditsql.Column(target, step.Column), sourceID)
	case step.Kind == models.JoinMulti:
		return t.dialect.ArrayContains(auditsql.Column(source, step.Column), targetID)
	case step.LinkOwner() == models.LinkOnTarget:
		return auditsql.Column(target, step.Column) + " = " + sourceID
	default:
		return auditsql.Column(source, step.Column) + " = " + targetID
	}
}


// Scoped reports whether statements are bound to a language value.
func (t *QueryTemplate) Scoped() bool {
	return t.scoped
}

// Distinct reports whether counts run on distinct identifiers. Any MULTI step, or a
// link owned by the target side, can repeat a row of t0 and forces distinct counting.
func (t *QueryTemplate) Distinct() bool {
	return t.distinct
}

// RowCount counts the entity's rows in scope.
func (t *QueryTemplate) RowCount() auditsql.Statement {
	return t.CountMatching(nil)
}

// ScalarNull returns the empty-value predicate of a scalar column.
func (t *QueryTemplate) ScalarNull(column string) string {
	return auditsql.Column("t0", column) + " IS NULL"
}

// ListEmpty returns the empty-value predicate of an array column: null or zero-length.
func (t *QueryTemplate) ListEmpty(column string) string {
	col := auditsql.Column("t0", column)
	return fmt.Sprintf("(%s IS NULL OR %s = 0)", col, t.dialect.ArrayLength(col))
}

// Predicate renders one boolean SQL condition over the joined rows, binding any values
// it needs into args.
type Predicate func(args *auditsql.Args) string

// Literal wraps a predicate that binds no values.
func Literal(expr string) Predicate {
	return func(*auditsql.Args) string { return expr }
}

// CountWhere returns one statement producing a conditional count per predicate, in order,
// evaluated in a single pass over the joined rows in scope.
func (t *QueryTemplate) CountWhere(predicates []string) auditsql.Statement {
	preds := make([]Predicate, len(predicates))
	for i, p := range predicates {
		preds[i] = Literal(p)
	}
	return t.CountEach(preds...)
}

// CountEach is CountWhere for predicates that bind values.
func (t *QueryTemplate) CountEach(predicates ...Predicate) auditsql.Statement {
	var args auditsql.Args
	exprs := make([]string, len(predicates))
	for i, p := range predicates {
		exprs[i] = t.conditionalCount(p(&args))
	}
	query := "SELECT " + strings.Join(exprs, ", ") + " FROM " + t.from + t.where(&args, nil)
	return auditsql.Statement{SQL: query, Args: args.Values()}
}

// AnyOf joins predicates with OR. With no predicates it never matches.
func AnyOf(predicates ...Predicate) Predicate {
	return func(args *auditsql.Args) string {
		if len(predicates) == 0 {
			return "FALSE"
		}
		parts := make([]string, len(predicates))
		for i, p := range predicates {
			parts[i] = p(args)
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
}

// ScalarOutside matches rows whose non-null value is not one of terms.
func (t *QueryTemplate) ScalarOutside(column string, terms []string) Predicate {
	return func(args *auditsql.Args) string {
		col := auditsql.Column("t0", column)
		return fmt.Sprintf("%s IS NOT NULL AND CAST(%s AS VARCHAR) NOT IN (%s)", col, col, args.BindList(terms))
	}
}

// ListHasElementOutside matches rows whose array holds at least one non-null element
// that is not one of terms.
func (t *QueryTemplate) ListHasElementOutside(column string, terms []string) Predicate {
	return func(args *auditsql.Args) string {
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE u.v IS NOT NULL AND CAST(u.v AS VARCHAR) NOT IN (%s))",
			t.dialect.ArrayElements(auditsql.Column("t0", column), "u"), args.BindList(terms))
	}
}

// ValuesOutside returns up to limit distinct observed values of a column that are not
// one of terms, sorted. Array columns are unnested first.
func (t *QueryTemplate) ValuesOutside(column string, isList bool, terms []string, limit int) auditsql.Statement {
	var args auditsql.Args
	value := auditsql.Column("t0", column)
	from := t.from
	if isList {
		from += " CROSS JOIN LATERAL " + t.dialect.ArrayElements(value, "u")
		value = "u.v"
	}
	cast := "CAST(" + value + " AS VARCHAR)"
	outside := fmt.Sprintf("%s IS NOT NULL AND %s NOT IN (%s)", value, cast, args.BindList(terms))

	query := "SELECT DISTINCT " + cast + " FROM " + from +
		t.where(&args, func(*auditsql.Args) string { return outside }) +
		fmt.Sprintf(" ORDER BY 1 LIMIT %d", limit)
	return auditsql.Statement{SQL: query, Args: args.Values()}
}

// CountMatching counts the rows in scope satisfying condition. condition may be nil, and
// binds its own values after the language.
func (t *QueryTemplate) CountMatching(condition func(args *auditsql.Args) string) auditsql.Statement {
	var args auditsql.Args
	query := "SELECT " + t.count() + " FROM " + t.from + t.where(&args, condition)
	return auditsql.Statement{SQL: query, Args: args.Values()}
}

// ActionRequired counts the rows in scope flagged for editorial action. The boolean is
// false when the entity has no review-status field.
func (t *QueryTemplate) ActionRequired() (auditsql.Statement, bool) {
	if !t.entity.HasReviewStatus {
		return auditsql.Statement{}, false
	}
	return t.CountMatching(func(args *auditsql.Args) string {
		return auditsql.Column("t0", ReviewStatusColumn) + " = " + args.Bind(ActionRequiredStatus)
	}), true
}

func (t *QueryTemplate) count() string {
	if t.distinct {
		return "COUNT(DISTINCT " + auditsql.Column("t0", schema.IdentifierColumn) + ")"
	}
	return "COUNT(*)"
}

func (t *QueryTemplate) conditionalCount(predicate string) string {
	if t.distinct {
		return fmt.Sprintf("COUNT(DISTINCT CASE WHEN %s THEN %s END)", predicate, auditsql.Column("t0", schema.IdentifierColumn))
	}
	return fmt.Sprintf("COUNT(CASE WHEN %s THEN 1 END)", predicate)
}

func (t *QueryTemplate) where(args *auditsql.Args, condition func(args *auditsql.Args) string) string {
	var clauses []string
	if t.scoped {
		clauses = append(clauses, t.scope+" = "+args.Bind(t.language))
	}
	if condition != nil {
		clauses = append(clauses, "("+condition(args)+")")
	}
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}
