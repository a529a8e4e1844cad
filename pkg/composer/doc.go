// Package composer reads the package metadata that Composer leaves on disk:
// the root composer.json and vendor/composer/installed.json.
//
// It is the input side of the index builder. [Project.Mappings] flattens the
// PSR-4 declarations of every package of a recognized type into the ordered
// mapping list that [autoload.Build] consumes; the order of that list is
// what decides which package wins when two declare the same namespace.
package composer
