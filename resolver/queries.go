package resolver

import (
	"fmt"
	"strings"

	"github.com/jopela/regions/vocabulary"
)

// CityLookup builds the query that maps a guide's search string to its city
// resource. The first column of the first row is taken as the answer.
type CityLookup interface {
	CityQuery(search string) (string, error)
}

// LabelLookup matches the search string against rdfs:label of resources
// typed dbowl:City or dbowl:Settlement. Only the text before the first comma
// is used, so "Montreal, Quebec" looks up "Montreal".
type LabelLookup struct {
	// Lang is the label language tag (default: "en").
	Lang string
}

// CityQuery implements CityLookup.
func (l LabelLookup) CityQuery(search string) (string, error) {
	name := search
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty search string")
	}

	lang := l.Lang
	if lang == "" {
		lang = "en"
	}

	return fmt.Sprintf(`SELECT DISTINCT ?city WHERE {
	?city <%s> %s .
	{ ?city a <%s> } UNION { ?city a <%s> }
} ORDER BY ?city LIMIT 1`,
		vocabulary.RdfsLabel, vocabulary.Literal(name, lang),
		vocabulary.DBpediaCityClass, vocabulary.DBpediaSettlementClass), nil
}

func countryQuery(resource string) (string, error) {
	subject, err := vocabulary.Ref(resource)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT ?country WHERE { %s dbowl:country ?country }", subject), nil
}

func alpha3Query(country string) (string, error) {
	object, err := vocabulary.Ref(country)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT ?iso WHERE {
	?gadm <%s> ?iso .
	?gadm <%s> %s .
}`, vocabulary.GadmISO, vocabulary.OwlSameAs, object), nil
}

func countryOfAlpha3Query(alpha3 string) (string, error) {
	if len(alpha3) != 3 {
		return "", fmt.Errorf("alpha-3 code must have three letters: %q", alpha3)
	}
	return fmt.Sprintf(`SELECT ?uri WHERE {
	?gadm <%s> %s .
	?gadm <%s> ?uri .
	?uri a dbowl:Country .
}`, vocabulary.GadmISO, vocabulary.Literal(alpha3, ""), vocabulary.OwlSameAs), nil
}
