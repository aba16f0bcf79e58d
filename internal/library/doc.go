// Package library resolves library references into installed libraries.
//
// A reference is a git URL with a ref, an archive URL, the name of an
// already installed library, a path to a definition file or a catalog name.
// Resolution fetches the upstream source into .libs/<name> and installs it
// into lib/<name>, either by copying a native library or by converting a
// foreign source tree with its definition's conversion script.
package library
