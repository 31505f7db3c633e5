package main

import (
	"strings"
	"unicode"

	"github.com/tjkurowski/tersect-go/internal/arena"
	"github.com/tjkurowski/tersect-go/internal/query"
	"github.com/tjkurowski/tersect-go/internal/tsterr"
)

// parseExpr implements the set expression grammar named (but not
// specified in detail) by spec §4.4: sample-name atoms, optionally
// wildcard-matched against the genome catalog, combined by binary
// operators ∪ ∩ \ △ (also accepted as their ASCII spellings | & - ^)
// with standard precedence (∩ binds tighter than ∪/\/△) and
// parentheses.
type token struct {
	kind string // "name", "op", "lparen", "rparen"
	text string
}

func tokenize(s string) []token {
	var toks []token
	i := 0
	runes := []rune(s)
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{"lparen", "("})
			i++
		case r == ')':
			toks = append(toks, token{"rparen", ")"})
			i++
		case strings.ContainsRune("∪∩\\△|&-^", r):
			toks = append(toks, token{"op", string(r)})
			i++
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && !strings.ContainsRune("()∪∩\\△|&^", runes[j]) {
				j++
			}
			toks = append(toks, token{"name", string(runes[i:j])})
			i = j
		}
	}
	return toks
}

func normOp(s string) query.Op {
	switch s {
	case "∩", "&":
		return query.Intersection
	case "∪", "|":
		return query.Union
	case "\\", "-":
		return query.Difference
	case "△", "^":
		return query.SymmetricDifference
	}
	return query.Union
}

// precedence: ∩ (and &) binds tighter than ∪, \, △.
func precedence(op string) int {
	if op == "∩" || op == "&" {
		return 2
	}
	return 1
}

type parser struct {
	toks []token
	pos  int
	db   *arena.Arena
}

func parseExpr(db *arena.Arena, s string) (*query.Node, error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return nil, tsterr.New(tsterr.NoQuery, "empty query")
	}
	p := &parser{toks: toks, db: db}
	n, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, tsterr.New(tsterr.NoQuery, "trailing input in query: "+s)
	}
	return n, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseBinary(minPrec int) (*query.Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != "op" || precedence(t.text) < minPrec {
			break
		}
		p.pos++
		right, err := p.parseBinary(precedence(t.text) + 1)
		if err != nil {
			return nil, err
		}
		left = query.Binary(normOp(t.text), left, right)
	}
	return left, nil
}

func (p *parser) parseAtom() (*query.Node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, tsterr.New(tsterr.NoQuery, "unexpected end of query")
	}
	if t.kind == "lparen" {
		p.pos++
		n, err := p.parseBinary(0)
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != "rparen" {
			return nil, tsterr.New(tsterr.NoQuery, "unbalanced parentheses")
		}
		p.pos++
		return n, nil
	}
	if t.kind != "name" {
		return nil, tsterr.New(tsterr.NoQuery, "expected sample name, got "+t.text)
	}
	p.pos++
	if !strings.ContainsRune(t.text, '*') {
		return query.Leaf(t.text), nil
	}
	var matches []string
	for _, g := range p.db.Genomes() {
		name := p.db.GenomeName(g)
		if query.MatchWildcard(t.text, name) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return nil, tsterr.New(tsterr.NoSuchSample, t.text)
	}
	return query.SubtreeFromList(query.Union, matches), nil
}
