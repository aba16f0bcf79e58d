package makefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownFlashLayout is returned for a layout name not in FlashLayouts.
var ErrUnknownFlashLayout = errors.New("unknown flash layout")

// FlashLayout describes a flash chip size and the linker script for it.
type FlashLayout struct {
	Name     string // megabits, e.g. "4m"
	SizeKB   int
	LDScript string
}

// FlashLayouts lists the supported layouts, smallest first.
var FlashLayouts = []FlashLayout{
	{Name: "4m", SizeKB: 512, LDScript: "eagle.app.v6.new.512.app1.ld"},
	{Name: "8m", SizeKB: 1024, LDScript: "eagle.app.v6.new.1024.app1.ld"},
	{Name: "16m", SizeKB: 2048, LDScript: "eagle.app.v6.new.2048.ld"},
	{Name: "32m", SizeKB: 4096, LDScript: "eagle.app.v6.new.2048.ld"},
}

// DefaultFlashLayout is used by new projects.
const DefaultFlashLayout = "4m"

// LookupFlashLayout finds a layout by name (case-insensitive).
func LookupFlashLayout(name string) (FlashLayout, error) {
	for _, l := range FlashLayouts {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return FlashLayout{}, fmt.Errorf("%w %q (choose one of %s)", ErrUnknownFlashLayout, name, strings.Join(FlashLayoutNames(), ", "))
}

// FlashLayoutNames returns the names of all supported layouts.
func FlashLayoutNames() []string {
	names := make([]string, len(FlashLayouts))
	for i, l := range FlashLayouts {
		names[i] = l.Name
	}
	return names
}

// SetFlashLayout rewrites LD_SCRIPT and FLASH_SIZE for the named layout.
func SetFlashLayout(text, name string) (string, error) {
	layout, err := LookupFlashLayout(name)
	if err != nil {
		return "", err
	}
	text, err = Set(text, LDScript, layout.LDScript)
	if err != nil {
		return "", err
	}
	return Set(text, FlashSize, strconv.Itoa(layout.SizeKB))
}
