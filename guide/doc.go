// Package guide finds city guide files and assembles regional guides.
//
// FSDiscovery walks a directory tree for files with a fixed base name
// (result.json by default) and reads each guide's city search string from a
// dotted JSON path. Builder turns a resolved country and its member guides
// into a Regional guide carrying the country's display name and its
// facilities of interest.
package guide
