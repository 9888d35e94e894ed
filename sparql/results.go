package sparql

import (
	"encoding/json"
	"fmt"
)

// Term types in the SPARQL 1.1 JSON results format.
const (
	TermURI     = "uri"
	TermLiteral = "literal"
	TermBNode   = "bnode"
)

// Term is one bound value of a result row.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// IsURI reports whether the term is an IRI.
func (t Term) IsURI() bool {
	return t.Type == TermURI
}

// Row is one solution of a SELECT query. Columns follow the order of the
// projected variables; a column may be unbound.
type Row struct {
	vars  []string
	terms []*Term
}

// NewRow builds a row from projected variable names and their bindings.
// Variables absent from bindings are unbound.
func NewRow(vars []string, bindings map[string]Term) Row {
	terms := make([]*Term, len(vars))
	for i, v := range vars {
		if t, ok := bindings[v]; ok {
			t := t
			terms[i] = &t
		}
	}
	return Row{vars: vars, terms: terms}
}

// Len returns the number of projected columns.
func (r Row) Len() int {
	return len(r.terms)
}

// At returns the i-th column and whether it is bound.
func (r Row) At(i int) (Term, bool) {
	if i < 0 || i >= len(r.terms) || r.terms[i] == nil {
		return Term{}, false
	}
	return *r.terms[i], true
}

// Get returns the column bound to variable name.
func (r Row) Get(name string) (Term, bool) {
	for i, v := range r.vars {
		if v == name {
			return r.At(i)
		}
	}
	return Term{}, false
}

// Vars returns the projected variable names.
func (r Row) Vars() []string {
	return r.vars
}

// First applies the extraction rule shared by every lookup: the first column
// of the first row. It reports false for an empty result or an unbound
// column.
func First(rows []Row) (Term, bool) {
	if len(rows) == 0 {
		return Term{}, false
	}
	return rows[0].At(0)
}

type resultsDocument struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]Term `json:"bindings"`
	} `json:"results"`
}

// DecodeResults parses a application/sparql-results+json document.
func DecodeResults(data []byte) ([]Row, error) {
	var doc resultsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Results == nil {
		return nil, fmt.Errorf("results member missing")
	}

	rows := make([]Row, 0, len(doc.Results.Bindings))
	for _, b := range doc.Results.Bindings {
		rows = append(rows, NewRow(doc.Head.Vars, b))
	}
	return rows, nil
}
