package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparisonStringRoundTrips(t *testing.T) {
	c := &Comparison{Path: "Age", Op: Gt, ValueLexeme: "30"}
	assert.Equal(t, "Age gt '30'", c.String())
}

func TestComparisonWithPathValueOmitsQuotes(t *testing.T) {
	c := &Comparison{Path: "StartDate", Op: Lt, ValueLexeme: "EndDate", ValueIsPath: true}
	assert.Equal(t, "StartDate lt EndDate", c.String())
}

func TestFunctionString(t *testing.T) {
	f := &Function{Fn: FnStartsWith, Path: "Name", Arg: "Jo"}
	assert.Equal(t, "startswith(Name, 'Jo')", f.String())
}

func TestLogicalStringNestsOperands(t *testing.T) {
	l := &Logical{
		Op:    Or,
		Left:  &Comparison{Path: "A", Op: Eq, ValueLexeme: "1"},
		Right: &Comparison{Path: "B", Op: Eq, ValueLexeme: "2"},
	}
	assert.Equal(t, "(A eq '1' or B eq '2')", l.String())
}

func TestNotString(t *testing.T) {
	n := &Not{Inner: &Comparison{Path: "A", Op: Eq, ValueLexeme: "1"}}
	assert.Equal(t, "not (A eq '1')", n.String())
}

func TestEscapeLiteralEscapesQuotes(t *testing.T) {
	c := &Comparison{Path: "Name", Op: Eq, ValueLexeme: "O'Brien"}
	assert.Equal(t, `Name eq 'O\'Brien'`, c.String())
}

func TestAsStringFnRoundTrip(t *testing.T) {
	fn, ok := Contains.AsStringFn()
	assert.True(t, ok)
	assert.Equal(t, FnContains, fn)

	_, ok = Eq.AsStringFn()
	assert.False(t, ok)
}

func TestOrderingClauseString(t *testing.T) {
	assert.Equal(t, "Name asc", OrderingClause{PropertyPath: "Name"}.String())
	assert.Equal(t, "Age desc", OrderingClause{PropertyPath: "Age", Descending: true}.String())
}
