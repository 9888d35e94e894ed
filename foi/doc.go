// Package foi supplies the facilities of interest attached to a regional
// guide.
//
// Sources fail closed: a database outage produces guides without facilities
// and an ERROR log entry, never an aborted run.
package foi
