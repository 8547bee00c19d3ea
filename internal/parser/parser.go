// Package parser implements the named-value token matchers: a declarative
// Pattern per option, composite Lists of matchers, and the expansion parsers
// (foreach, replace-foreach, positional args) that desugar into canonical
// tokens before matching.
//
// Every matcher follows the same contract:
//
//	(true,  nil)  tokens consumed, values written
//	(false, nil)  the next token is not mine; nothing consumed, try the next matcher
//	(false, err)  a name matched but its values did not; the line is invalid
package parser

import (
	"reflect"

	"github.com/Azure/azure-ai-cli-sub003/internal/namedvalues"
	"github.com/Azure/azure-ai-cli-sub003/internal/tokens"
)

// Parser consumes one option (name plus values) from a token source.
type Parser interface {
	Parse(src tokens.Source, values *namedvalues.Values) (bool, error)
}

// Func adapts a function to the Parser interface.
type Func func(src tokens.Source, values *namedvalues.Values) (bool, error)

func (f Func) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	return f(src, values)
}

// List tries its children in declared order; the first match wins and the
// first value error ends the attempt.
type List struct {
	parsers []Parser
}

// NewList builds a list. Nil entries, including typed nil pointers, are
// dropped so optional sub-lists can be omitted inline.
func NewList(parsers ...Parser) *List {
	l := &List{}
	for _, p := range parsers {
		l.Add(p)
	}
	return l
}

// Add appends p unless it is nil.
func (l *List) Add(p Parser) {
	if isNil(p) {
		return
	}
	l.parsers = append(l.parsers, p)
}

// Len returns the number of direct children.
func (l *List) Len() int {
	return len(l.parsers)
}

// Parsers returns the direct children.
func (l *List) Parsers() []Parser {
	return l.parsers
}

func (l *List) Parse(src tokens.Source, values *namedvalues.Values) (bool, error) {
	for _, p := range l.parsers {
		ok, err := p.Parse(src, values)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func isNil(p Parser) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Walk visits every Pattern reachable from p, depth first.
func Walk(p Parser, visit func(*Pattern)) {
	switch t := p.(type) {
	case *Pattern:
		visit(t)
	case *List:
		for _, child := range t.parsers {
			Walk(child, visit)
		}
	case *ReplaceForEach:
		visit(t.pattern)
	}
}
