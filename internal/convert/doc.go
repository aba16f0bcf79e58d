// Package convert runs the conversion scripts that reshape a foreign
// library's source tree before it is linked into lib/<name>. Scripts run
// either as native executables or inside an embedded POSIX shell
// interpreter, which needs no /bin/sh on the host.
package convert
