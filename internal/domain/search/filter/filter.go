package filter

import "fmt"

// MaxValuesPerCondition bounds the alternatives of a single AnyOf condition.
const MaxValuesPerCondition = 256

// Expression is a conjunction of conditions; mustNot conditions are negated.
type Expression struct {
	must    []Condition
	mustNot []Condition
}

// NewExpression creates a filter Expression.
func NewExpression(must, mustNot []Condition) Expression {
	return Expression{must: must, mustNot: mustNot}
}

// And returns a copy of the expression with cond appended to the must group.
func (e Expression) And(cond Condition) Expression {
	must := make([]Condition, 0, len(e.must)+1)
	must = append(must, e.must...)
	return Expression{must: append(must, cond), mustNot: e.mustNot}
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.mustNot) == 0
}

// Kind distinguishes condition shapes.
type Kind int

const (
	// KindTag matches a tag field against one or more alternatives.
	KindTag Kind = iota
	// KindRange matches a numeric field against an inclusive range.
	KindRange
)

// Condition is a single filter clause: a tag match (with alternatives) or a numeric range.
type Condition struct {
	key    string
	kind   Kind
	values []string
	min    float64
	max    float64
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, value string) (Condition, error) {
	return NewAnyOf(key, value)
}

// NewAnyOf creates a tag condition matching any of values.
func NewAnyOf(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("at least one value is required for key %q", key)
	}
	if len(values) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerCondition)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty value for key %q", key)
		}
	}
	return Condition{key: key, kind: KindTag, values: values}, nil
}

// NewBetween creates an inclusive numeric range condition.
func NewBetween(key string, lo, hi float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if lo > hi {
		return Condition{}, fmt.Errorf("range for key %q is empty (%g > %g)", key, lo, hi)
	}
	return Condition{key: key, kind: KindRange, min: lo, max: hi}, nil
}

// NewEquals creates a numeric equality condition.
func NewEquals(key string, v float64) (Condition, error) {
	return NewBetween(key, v, v)
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Kind returns the condition shape.
func (c Condition) Kind() Kind { return c.kind }

// Values returns the tag alternatives.
func (c Condition) Values() []string { return c.values }

// Min returns the inclusive lower bound of a range condition.
func (c Condition) Min() float64 { return c.min }

// Max returns the inclusive upper bound of a range condition.
func (c Condition) Max() float64 { return c.max }
