package model

// Query represents a collection-scoped query: filters, multi-field sort
// applied in declaration order, an optional limit and an optional
// start-after cursor (the last document of the previous page).
type Query struct {
	Filters    []Filter
	Orders     []Order
	Limit      int
	StartAfter *Document
}

// Filter represents a single filter condition (where clause).
type Filter struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// Order represents a single ordering condition.
type Order struct {
	Field     string
	Direction string
}

const (
	// Ascending is used for ordering in ascending order.
	Ascending = "asc"
	// Descending is used for ordering in descending order.
	Descending = "desc"
)

// Operator is a filter comparison operator.
type Operator string

// Operator types for filters. The store supports equality and
// array-membership matching; range comparisons over payload fields are a
// deliberate non-feature (callers filter client-side instead).
const (
	OperatorEqual            Operator = "=="
	OperatorNotEqual         Operator = "!="
	OperatorIn               Operator = "in"
	OperatorArrayContains    Operator = "array-contains"
	OperatorArrayContainsAny Operator = "array-contains-any"
)

// Where is a convenience constructor for a Filter.
func Where(field string, op Operator, value interface{}) Filter {
	return Filter{Field: field, Operator: op, Value: value}
}

// OrderBy is a convenience constructor for an Order.
func OrderBy(field, direction string) Order {
	return Order{Field: field, Direction: direction}
}
