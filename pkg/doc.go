// Package pkg holds the spoom libraries.
//
// # Overview
//
// Spoom turns the PSR-4 declarations of a Composer project into a
// namespace-prefix index and resolves class names against it. The pkg
// directory is organized as follows:
//
//  1. [autoload] - tokenizer, index table, builder, resolver and hook chain
//  2. [composer] - composer.json and installed.json reader
//  3. [staging] - public file staging and the install lifecycle
//  4. [source] - tree-sitter PHP declaration scanner
//  5. [cache] - table cache backends (file, Redis, none)
//  6. [config], [errors], [observability], [watch], [buildinfo] - support
//
// # Data flow
//
//	composer.json + vendor/composer/installed.json
//	         ↓
//	    [composer] Project.Mappings
//	         ↓
//	    [autoload] Build → Builder.Write → spoom/package.toml
//	         ↓
//	    [autoload] Open → Resolver.Resolve → [source] Runtime
package pkg
