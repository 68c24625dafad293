package auth

import (
	"github.com/gobwas/glob"
	"github.com/goliatone/go-errors"
)

// Classification is the access requirement for a route
type Classification int

const (
	// RoutePublic routes are served without inspecting credentials
	RoutePublic Classification = iota
	// RouteProtected routes require a verified identity
	RouteProtected
)

func (c Classification) String() string {
	if c == RoutePublic {
		return "public"
	}
	return "protected"
}

// PolicyRule pairs a glob path pattern with its classification
type PolicyRule struct {
	Pattern string
	Access  Classification
}

// Public builds a public rule for the given pattern
func Public(pattern string) PolicyRule {
	return PolicyRule{Pattern: pattern, Access: RoutePublic}
}

// Protected builds a protected rule for the given pattern
func Protected(pattern string) PolicyRule {
	return PolicyRule{Pattern: pattern, Access: RouteProtected}
}

type compiledRule struct {
	matcher glob.Glob
	access  Classification
}

// AccessPolicy is an ordered route classification table. Rules are
// evaluated top to bottom, first match wins, and a path matching no rule
// is protected. The table is immutable after construction and safe for
// concurrent reads.
type AccessPolicy struct {
	rules []compiledRule
}

// NewAccessPolicy compiles the given rules. A pattern that does not
// compile is a construction error; the process should not start with a
// partial table.
func NewAccessPolicy(rules ...PolicyRule) (*AccessPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))

	for _, rule := range rules {
		matcher, err := glob.Compile(rule.Pattern, '/')
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid route pattern").
				WithMetadata(map[string]any{"pattern": rule.Pattern})
		}
		compiled = append(compiled, compiledRule{
			matcher: matcher,
			access:  rule.Access,
		})
	}

	return &AccessPolicy{rules: compiled}, nil
}

// Classify maps a request path to its access requirement. Classify is
// total: every path maps to exactly one classification, defaulting to
// protected when nothing matches.
func (p *AccessPolicy) Classify(path string) Classification {
	for _, rule := range p.rules {
		if rule.matcher.Match(path) {
			return rule.access
		}
	}
	return RouteProtected
}

// IsPublic reports whether the path may be served without credentials
func (p *AccessPolicy) IsPublic(path string) bool {
	return p.Classify(path) == RoutePublic
}
