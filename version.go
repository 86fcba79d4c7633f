// Package actorkit is the root of the actorkit runtime module.
//
// This package holds only the build version string, VERSION, which the
// actorkitd and actorctl binaries print.
package actorkit

// VERSION of project.
var VERSION = "undefined" // set during the build process with -ldflags
