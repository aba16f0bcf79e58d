// Package project manages the libraries of a firmware project: the
// directories under lib/ and the SRC_LIBS line of the project Makefile.
package project
