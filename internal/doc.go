// Package internal provides the core of the PHP condition fixer.
//
// Key components:
//
// Engine: coordinates the fixing process. It tokenizes a PHP file, collects
// nolint directives, runs every enabled fixer over the token buffer and
// checks that the rewritten source still parses.
//
// Result: the original and rewritten content of one file, together with
// one Issue per rewritten site.
//
// Cache: remembers files already known to need no fix.
//
// SourceCode: a simple structure to represent the content of a source file
// as a collection of lines.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, internal.Options{})
//	if err != nil {
//	    // handle error
//	}
//
//	result, err := engine.Run("path/to/file.php")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range result.Issues {
//	    fmt.Printf("%s:%d: %s\n", issue.Filename, issue.Start.Line, issue.Message)
//	}
//
// This package is intended for internal use within the fixer and should not
// be imported by external packages.
package internal
