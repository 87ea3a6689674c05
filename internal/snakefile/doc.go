// Package snakefile serializes rule descriptors into Snakemake rule text.
//
// Each rule is written as
//
//	rule <name>:
//		<directive>:
//			<value>
//		shell:
//			'''
//			<statement> >> {log} 2>&1
//			'''
//
// Every statement's output is appended to the rule's log. Statements that
// already redirect (they contain " > ") are wrapped in a command
// substitution so their own redirect target is left alone and only the
// echoed capture goes to the log.
package snakefile
