// Package filter implements the content-type filter state machine.
//
// The token "any" is mutually exclusive with every concrete class token,
// and the set is never empty: emptying it collapses back to {any}.
package filter

import (
	"strings"

	"github.com/synapse-kb/synapse/internal/domain/item"
)

// Token is a content-type filter token: a content class or Any.
type Token string

// Any matches every content class. Its absence in an adapter call
// signals "no filter", so it is stripped before transmission.
const Any Token = "any"

// Class filter tokens, one per content class.
const (
	Note    = Token(item.ClassNote)
	URL     = Token(item.ClassURL)
	Image   = Token(item.ClassImage)
	PDF     = Token(item.ClassPDF)
	Video   = Token(item.ClassVideo)
	Product = Token(item.ClassProduct)
)

// canonical token order, Any first.
var allTokens = []Token{Any, Note, URL, Image, PDF, Video, Product}

// ParseToken converts a string into a known Token.
func ParseToken(s string) (Token, bool) {
	t := Token(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allTokens {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// Set is an immutable content-type filter set. The zero value is {any}.
type Set struct {
	tokens []Token
}

// NewSet creates a normalized filter set. Unknown tokens are dropped,
// an empty result collapses to {any}, and Any is removed when concrete
// tokens are present.
func NewSet(tokens ...Token) Set {
	present := make(map[Token]bool, len(tokens))
	for _, t := range tokens {
		if pt, ok := ParseToken(string(t)); ok {
			present[pt] = true
		}
	}
	return normalize(present)
}

// Toggle flips membership of token t and returns the resulting set:
//   - enabling Any clears all concrete tokens;
//   - disabling Any collapses to {any} (the set is never empty);
//   - enabling a concrete token removes Any;
//   - disabling the last concrete token collapses to {any}.
func (s Set) Toggle(t Token) Set {
	t, ok := ParseToken(string(t))
	if !ok {
		return s.normalized()
	}

	present := s.asMap()
	if present[t] {
		delete(present, t)
	} else if t == Any {
		return NewSet(Any)
	} else {
		delete(present, Any)
		present[t] = true
	}
	return normalize(present)
}

// Has reports whether token t is active.
func (s Set) Has(t Token) bool {
	for _, tok := range s.normalized().tokens {
		if tok == t {
			return true
		}
	}
	return false
}

// IsAny reports whether the set is the trivial {any} filter.
func (s Set) IsAny() bool {
	n := s.normalized()
	return len(n.tokens) == 1 && n.tokens[0] == Any
}

// Tokens returns the active tokens in canonical order.
func (s Set) Tokens() []Token {
	n := s.normalized()
	out := make([]Token, len(n.tokens))
	copy(out, n.tokens)
	return out
}

// Classes returns the concrete content classes for adapter calls.
// The Any token is stripped: a nil result means "no filter".
func (s Set) Classes() []item.Class {
	if s.IsAny() {
		return nil
	}
	tokens := s.normalized().tokens
	classes := make([]item.Class, 0, len(tokens))
	for _, t := range tokens {
		classes = append(classes, item.Class(t))
	}
	return classes
}

// Equal reports whether two sets hold the same tokens.
func (s Set) Equal(o Set) bool {
	a, b := s.normalized().tokens, o.normalized().tokens
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	tokens := s.normalized().tokens
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func (s Set) normalized() Set {
	if len(s.tokens) == 0 {
		return Set{tokens: []Token{Any}}
	}
	return s
}

func (s Set) asMap() map[Token]bool {
	present := make(map[Token]bool, len(s.tokens))
	for _, t := range s.normalized().tokens {
		present[t] = true
	}
	return present
}

func normalize(present map[Token]bool) Set {
	if len(present) > 1 {
		delete(present, Any)
	}
	if len(present) == 0 {
		return Set{tokens: []Token{Any}}
	}
	tokens := make([]Token, 0, len(present))
	for _, t := range allTokens {
		if present[t] {
			tokens = append(tokens, t)
		}
	}
	return Set{tokens: tokens}
}
