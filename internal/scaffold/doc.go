// Package scaffold generates new firmware projects and libraries from
// embedded templates and modifies the Makefile and library definition of
// existing ones. It powers "esp8266-setup start-project", "start-library",
// "modify-settings" and "modify-library", and is reused when a foreign
// library is converted into the lib/<name> layout.
package scaffold
