// Package rule models one Snakemake rule before it is serialized: the
// directive values (input, threads, output, log, benchmark, conda) and the
// fully rendered shell statements.
//
// Directive values are a closed set of variants (Path, Count, PathList,
// KeyedPaths); the snakefile package formats each variant with a type
// switch.
package rule
