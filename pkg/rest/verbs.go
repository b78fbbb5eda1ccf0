package rest

import (
	"net/http"
	"strings"
)

// Verb is an HTTP method exposed as a call on the Client.
type Verb string

// Supported verbs.
const (
	VerbGet     Verb = "get"
	VerbPost    Verb = "post"
	VerbPut     Verb = "put"
	VerbPatch   Verb = "patch"
	VerbDelete  Verb = "delete"
	VerbHead    Verb = "head"
	VerbOptions Verb = "options"
)

// verbTable is the closed dispatch table. Order is the documented order.
var verbTable = []struct {
	verb   Verb
	method string
}{
	{VerbGet, http.MethodGet},
	{VerbPost, http.MethodPost},
	{VerbPut, http.MethodPut},
	{VerbPatch, http.MethodPatch},
	{VerbDelete, http.MethodDelete},
	{VerbHead, http.MethodHead},
	{VerbOptions, http.MethodOptions},
}

// declaredMembers are explicit Client methods; they never resolve as verbs.
var declaredMembers = map[string]bool{
	"query":    true,
	"method":   true,
	"close":    true,
	"settoken": true,
	"host":     true,
	"scheme":   true,
	"port":     true,
	"baseurl":  true,
	"url":      true,
}

// Verbs returns the supported verbs in table order.
func Verbs() []Verb {
	verbs := make([]Verb, 0, len(verbTable))
	for _, entry := range verbTable {
		verbs = append(verbs, entry.verb)
	}

	return verbs
}

// ParseVerb resolves name (case-insensitive) against the verb table.
func ParseVerb(name string) (Verb, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, entry := range verbTable {
		if string(entry.verb) == normalized {
			return entry.verb, nil
		}
	}

	return "", &UnknownMemberError{Name: name, Declared: declaredMembers[normalized]}
}

// Method returns the HTTP method token, e.g. "GET".
func (v Verb) Method() string {
	for _, entry := range verbTable {
		if entry.verb == v {
			return entry.method
		}
	}

	return strings.ToUpper(string(v))
}

// String implements fmt.Stringer.
func (v Verb) String() string {
	return string(v)
}

// HasBody reports whether the verb conventionally carries a request body.
func (v Verb) HasBody() bool {
	return v == VerbPost || v == VerbPut || v == VerbPatch
}

func verbList() string {
	names := make([]string, 0, len(verbTable))
	for _, entry := range verbTable {
		names = append(names, string(entry.verb))
	}

	return strings.Join(names, ", ")
}
