// Package pipeline turns a config.Model into a graph on a session: it
// instantiates the declared modules, invokes the calls in dependency order
// and resolves the action blocks into dispatcher configurations.
package pipeline
