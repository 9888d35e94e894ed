package vocabulary

// Standard Vocabulary IRIs
//
// These constants provide the W3C and linked-data IRIs the lookup queries are
// written against.
//
// References:
// - OWL: https://www.w3.org/TR/owl2-overview/
// - RDF Schema: https://www.w3.org/TR/rdf-schema/
// - DBpedia ontology: https://dbpedia.org/ontology/
// - GADM-RDF: http://gadm.geovocab.org/

// OWL (Web Ontology Language) Standard IRIs
const (
	// OwlSameAs indicates that two URI references refer to the same entity.
	// Links a GADM administrative area to its DBpedia country.
	OwlSameAs = "http://www.w3.org/2002/07/owl#sameAs"
)

// RDF and RDF Schema Standard IRIs
const (
	// RdfType states that a resource is an instance of a class.
	RdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

	// RdfsLabel provides a human-readable name for a resource.
	RdfsLabel = "http://www.w3.org/2000/01/rdf-schema#label"
)

// XML Schema datatypes
const (
	XsdString = "http://www.w3.org/2001/XMLSchema#string"
)

// DBpedia ontology IRIs
const (
	// DBpediaOntology is the namespace bound to the dbowl: prefix.
	DBpediaOntology = "http://dbpedia.org/ontology/"

	// DBpediaResource is the namespace of DBpedia entities.
	DBpediaResource = "http://dbpedia.org/resource/"

	// DBpediaCountry relates a place to the country containing it.
	DBpediaCountry = DBpediaOntology + "country"

	// DBpediaCountryClass marks a resource as a country.
	DBpediaCountryClass = DBpediaOntology + "Country"

	// DBpediaCityClass and DBpediaSettlementClass mark populated places.
	DBpediaCityClass       = DBpediaOntology + "City"
	DBpediaSettlementClass = DBpediaOntology + "Settlement"
)

// GADM-RDF IRIs
const (
	// GadmOntology is the namespace of the GADM administrative areas vocabulary.
	GadmOntology = "http://gadm.geovocab.org/ontology#"

	// GadmISO carries the ISO 3166 alpha-3 code of a level 0 area.
	GadmISO = GadmOntology + "iso"
)
