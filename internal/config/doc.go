// Package config loads the stashgraph.hcl configuration file.
//
// The file is plain HCL decoded with gohcl. Expressions are evaluated with an
// `env` object holding the process environment, so values such as
// `workflow = "${env.HOME}/workflow.json"` work. Every attribute is optional;
// Default supplies the values an absent attribute falls back to.
package config
