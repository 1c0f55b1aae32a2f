package dune

// Version is the current release of the Dune engine.
const Version = "0.1.0"
