package nlq

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// deniedKeywords are statement types that must never reach the datastore.
var deniedKeywords = map[string]struct{}{
	"drop":     {},
	"delete":   {},
	"update":   {},
	"insert":   {},
	"alter":    {},
	"create":   {},
	"truncate": {},
	"grant":    {},
	"revoke":   {},
}

// StaticValidator is the offline half of the safety net: a deterministic,
// lexical check that the candidate is a single read-only SELECT. Keywords are
// matched as whole tokens, so identifiers like update_count or created_at do
// not trip the denylist.
type StaticValidator struct{}

func NewStaticValidator() StaticValidator {
	return StaticValidator{}
}

func (StaticValidator) Check(_ context.Context, statement string) (Verdict, error) {
	tokens := keywordTokens(statement)
	if len(tokens) == 0 {
		return Reject(ReasonNotASelect, "statement is empty"), nil
	}
	for _, token := range tokens {
		if _, denied := deniedKeywords[token]; denied {
			return Reject(ReasonDangerousKeyword, fmt.Sprintf("%s statements are not allowed", strings.ToUpper(token))), nil
		}
	}
	if tokens[0] != "select" {
		return Reject(ReasonNotASelect, "only SELECT queries are allowed"), nil
	}
	return Accept(), nil
}

// keywordTokens lowercases the statement and splits it at every rune that
// cannot be part of a SQL identifier, anchoring keyword matches at token
// boundaries. Underscores stay inside tokens so column names containing a
// denylisted word survive intact.
func keywordTokens(statement string) []string {
	return strings.FieldsFunc(strings.ToLower(statement), func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
