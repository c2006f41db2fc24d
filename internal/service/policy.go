package service

import (
	"strings"

	"doctransfer/internal/model"
)

// DefaultDeniedRecipient is the address sharing is refused for when nothing else is configured.
const DefaultDeniedRecipient = "nosharable@gmail.com"

// SharePolicy decides which recipients a document may not be shared with.
type SharePolicy struct {
	denied map[string]struct{}
}

// NewSharePolicy builds a deny-list policy from recipient emails.
func NewSharePolicy(deniedEmails []string) SharePolicy {
	p := SharePolicy{denied: make(map[string]struct{}, len(deniedEmails))}
	for _, e := range deniedEmails {
		if e = strings.TrimSpace(e); e != "" {
			p.denied[e] = struct{}{}
		}
	}
	return p
}

// Blocks reports whether the email is on the deny-list.
func (p SharePolicy) Blocks(email string) bool {
	_, ok := p.denied[email]
	return ok
}

// Partition splits recipients into the allowed set and the blocked emails.
// Both keep input order and hold each recipient once: allowed by identity key, blocked by email.
func (p SharePolicy) Partition(recipients []model.Person) (allowed []model.Person, blocked []string) {
	allowed = make([]model.Person, 0, len(recipients))
	seenKeys := make(map[string]struct{}, len(recipients))
	seenBlocked := make(map[string]struct{})
	for _, r := range recipients {
		if !p.Blocks(r.Email) {
			if _, dup := seenKeys[r.Key()]; !dup {
				seenKeys[r.Key()] = struct{}{}
				allowed = append(allowed, r)
			}
			continue
		}
		if _, dup := seenBlocked[r.Email]; !dup {
			seenBlocked[r.Email] = struct{}{}
			blocked = append(blocked, r.Email)
		}
	}
	return allowed, blocked
}
