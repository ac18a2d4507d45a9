// Package memory provides in-process implementations of the store and
// directory ports. They back the simulate command and the package tests, and
// can serve a single-instance deployment.
package memory
