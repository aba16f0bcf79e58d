// Package fetch retrieves upstream library sources into the project's
// raw-fetch directory (.libs/<name>), either by cloning a git repository at
// a branch, tag or commit, or by downloading and unpacking an archive.
package fetch
