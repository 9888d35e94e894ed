// Package vocabulary provides the IRIs and query-term helpers used to build
// graph lookups.
//
// Standard IRIs (OWL, RDF, RDFS, the DBpedia ontology and GADM-RDF) are
// exposed as constants so query templates and tests agree on one spelling.
//
// Values from outside the process (guide search strings, resources read from
// result rows) never reach a query unescaped: literals go through Literal and
// IRIs through Ref, which rejects anything that could close the term early.
//
//	subject, err := vocabulary.Ref(resource)
//	if err != nil {
//	    return err
//	}
//	q := "SELECT ?country WHERE { " + subject + " dbowl:country ?country }"
package vocabulary
