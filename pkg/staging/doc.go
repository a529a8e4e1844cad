// Package staging copies the "public" files declared by spoom packages into
// the shared staging directory and removes them again.
//
// A package declares its public files in composer.json:
//
//	"extra": {"spoom": {"public": {"assets": "acme", "robots.txt": "robots.txt"}}}
//
// Keys are paths inside the package, values are destinations inside the
// staging directory. Directories are staged recursively.
//
// Staging never aborts a batch: a file that cannot be copied or removed is
// reported on the logger and skipped.
//
// [Installer] implements the install/update/uninstall lifecycle on top of
// [Manager]; [Sync] drives that lifecycle from the installed package list
// and the [State] recorded by the previous run.
package staging
