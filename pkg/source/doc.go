// Package source scans PHP source files for the symbols they declare.
//
// [Runtime] is the in-process stand-in for a PHP runtime used by spoom
// resolve and spoom serve: it implements autoload.Loader by parsing a file
// with tree-sitter and recording its class, interface, trait and enum
// declarations, and autoload.SymbolRegistry by looking those records up.
// Nothing is executed.
package source
