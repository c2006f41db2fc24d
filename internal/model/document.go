package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPersonKey is returned for recipient keys that are not email#name#surname.
var ErrInvalidPersonKey = errors.New("invalid person key")

// identityKeySeparator joins the components of a Person key.
const identityKeySeparator = "#"

// Person is the identity triple used for ownership snapshots and share recipients.
type Person struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Key returns the persisted form of the person: email#name#surname.
func (p Person) Key() string {
	return p.Email + identityKeySeparator + p.Name + identityKeySeparator + p.Surname
}

// ParsePerson decodes an email#name#surname key. Missing trailing fields are left empty.
func ParsePerson(key string) Person {
	parts := strings.SplitN(key, identityKeySeparator, 3)
	var p Person
	p.Email = parts[0]
	if len(parts) > 1 {
		p.Name = parts[1]
	}
	if len(parts) > 2 {
		p.Surname = parts[2]
	}
	return p
}

// ParsePeople decodes a list of person keys, skipping empty entries.
func ParsePeople(keys []string) []Person {
	people := make([]Person, 0, len(keys))
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		people = append(people, ParsePerson(k))
	}
	return people
}

// ParseRecipients decodes client-supplied recipient keys. Unlike ParsePeople it rejects
// keys that would not round-trip: each must carry all three fields and a non-empty email.
func ParseRecipients(keys []string) ([]Person, error) {
	people := make([]Person, 0, len(keys))
	for _, k := range keys {
		if strings.Count(k, identityKeySeparator) < 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPersonKey, k)
		}
		p := ParsePerson(k)
		if strings.TrimSpace(p.Email) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPersonKey, k)
		}
		people = append(people, p)
	}
	return people, nil
}

// PeopleKeys encodes people back to their persisted keys.
func PeopleKeys(people []Person) []string {
	keys := make([]string, 0, len(people))
	for _, p := range people {
		keys = append(keys, p.Key())
	}
	return keys
}

// Document is a tracked, owned and shareable reference to one uploaded object.
type Document struct {
	Owner        string    `json:"owner"`
	OwnerName    string    `json:"owner_name"`
	OwnerSurname string    `json:"owner_surname"`
	OwnerSubject string    `json:"owner_subject"`
	ShareID      string    `json:"share_id"`
	DisplayName  string    `json:"display_name"`
	StorageKey   string    `json:"storage_key"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploaded_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	People       []Person  `json:"people"`
}

// OwnerPerson returns the owner identity snapshot stored on the document.
func (d Document) OwnerPerson() Person {
	return Person{Email: d.Owner, Name: d.OwnerName, Surname: d.OwnerSurname}
}

// IsShared reports whether the document has at least one recipient.
func (d Document) IsShared() bool {
	return len(d.People) > 0
}

// SharedWithEmail reports whether any recipient carries the given email.
func (d Document) SharedWithEmail(email string) bool {
	for _, p := range d.People {
		if p.Email == email {
			return true
		}
	}
	return false
}

// SharedWith reports whether the exact identity appears among the recipients.
func (d Document) SharedWith(person Person) bool {
	for _, p := range d.People {
		if p == person {
			return true
		}
	}
	return false
}

// Expired reports whether the document expired strictly before now.
func (d Document) Expired(now time.Time) bool {
	return d.ExpiresAt.Before(now)
}
