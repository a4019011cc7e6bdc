package result

import "strings"

// Result is a person returned by a remote search.
type Result struct {
	Display string
	Nom     string
	Prenom  string
}

// New creates a result. An empty display falls back to "Nom Prenom".
func New(display, nom, prenom string) Result {
	r := Result{Display: strings.TrimSpace(display), Nom: nom, Prenom: prenom}
	if r.Display == "" {
		r.Display = r.FullName()
	}
	return r
}

// FullName returns "Nom Prenom", skipping empty parts.
func (r Result) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.Nom) + " " + strings.TrimSpace(r.Prenom))
}
