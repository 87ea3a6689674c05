// Package pipeline loads assembly pipeline definitions.
//
// A definition is a YAML file named after its pipeline:
//
//	description: free text printed in the METHODS banner
//	versions:            # ordered: tool label -> version probe expression
//	  minimap2: minimap2 --version
//	commands: |          # one shell statement per line, {NAME} placeholders
//	  minimap2 -t {NB_THREADS} ...
//	conda:               # optional conda environment specification
//	  dependencies: [minimap2=2.17]
//
// Definitions are looked up by name through a Source. A built-in catalogue
// is embedded in the binary; user directories can be chained in front of
// it.
package pipeline
