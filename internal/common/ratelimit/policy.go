package ratelimit

import (
	"sort"
	"time"
)

// PolicyName identifies a protected action
type PolicyName string

const (
	PolicyAuth           PolicyName = "auth"
	PolicySignup         PolicyName = "signup"
	PolicyWikiSubmission PolicyName = "wiki_submission"
	PolicySocialConnect  PolicyName = "social_connect"
	PolicyPasswordReset  PolicyName = "password_reset"
)

// Policy is an immutable limit per window
type Policy struct {
	Name   PolicyName
	Limit  int
	Window time.Duration
}

var registry = map[PolicyName]Policy{
	PolicyAuth:           {Name: PolicyAuth, Limit: 5, Window: 15 * time.Minute},
	PolicySignup:         {Name: PolicySignup, Limit: 3, Window: time.Hour},
	PolicyWikiSubmission: {Name: PolicyWikiSubmission, Limit: 10, Window: time.Hour},
	PolicySocialConnect:  {Name: PolicySocialConnect, Limit: 20, Window: time.Hour},
	PolicyPasswordReset:  {Name: PolicyPasswordReset, Limit: 3, Window: time.Hour},
}

// Lookup returns the policy registered under name
func Lookup(name PolicyName) (Policy, bool) {
	p, ok := registry[name]
	return p, ok
}

// Policies returns every registered policy ordered by name
func Policies() []Policy {
	out := make([]Policy, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Valid reports whether n names a registered policy
func (n PolicyName) Valid() bool {
	_, ok := registry[n]
	return ok
}

func (n PolicyName) String() string {
	return string(n)
}
