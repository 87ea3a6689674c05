// Package params holds the parameter context used to fill pipeline command
// templates.
//
// A Context maps symbolic names (WD, NB_THREADS, COVERAGE, ...) to scalar
// values. It is built once per synthesis run and shared read-only by every
// pipeline. Templates reference values with {NAME} placeholders; {{ and }}
// produce literal braces.
package params
