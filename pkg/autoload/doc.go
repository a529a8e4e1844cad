// Package autoload builds and consults the namespace index that maps PHP
// namespace prefixes to source directories.
//
// The package has two halves that run in different processes:
//
//   - The build half ([Build], [Builder]) runs when the host package manager
//     regenerates its autoloader. It takes every declared namespace mapping,
//     de-duplicates it, orders it longest prefix first and writes the result
//     as a single artifact file.
//   - The resolve half ([Open], [Resolver]) reads that artifact once per
//     process and answers "where is the file for this symbol?" requests.
//
// # Matching
//
// The index is a flat list scanned in order, not a trie. Because entries are
// sorted by descending prefix length, the first prefix that matches a symbol
// is also the most specific one. A matching entry strips its own segments
// from the symbol and looks for the file below its directory:
//
//	entry:   App\Vendor\ -> /proj/vendor/pkg/src (2 segments)
//	symbol:  App\Vendor\Http\Client
//	file:    /proj/vendor/pkg/src/Http/Client.php
//
// When the exact file is missing the bare name is split with [Tokenize] and
// each shorter name is tried, so nested types declared in a file named after
// an outer type still load.
//
// # Hooks
//
// A [Resolver] is installed into a [Chain], the equivalent of the runtime's
// unresolved-symbol callback list. [DefaultChain] is the process-wide chain;
// tests create their own with [NewChain].
//
// # Artifact
//
// The artifact is a TOML document with one [[namespace]] table per entry in
// match order. [EncodePHP] writes the same table as a PHP file returning an
// array, for consumption by a PHP-side loader.
package autoload
