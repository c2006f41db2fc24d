package model

// User is an identity resolved from the identity provider.
type User struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Role      string `json:"role,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
}

// Person returns the identity triple of the user.
func (u User) Person() Person {
	return Person{Email: u.Email, Name: u.Name, Surname: u.Surname}
}

// IdentityKey returns the email#name#surname key used for share membership.
func (u User) IdentityKey() string {
	return u.Person().Key()
}

// HasRole reports whether the user carries the given role marker.
func (u User) HasRole(role string) bool {
	return role != "" && u.Role == role
}
