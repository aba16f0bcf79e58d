package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/interp"

	"github.com/esp8266-setup/esp8266-setup/internal/platform"
)

type builtinFunc func(dir string, flags map[rune]bool, args []string) error

var builtinCommands = map[string]builtinFunc{
	"mkdir": mkdirBuiltin,
	"cp":    cpBuiltin,
	"mv":    mvBuiltin,
	"rm":    rmBuiltin,
}

// builtins handles the file commands conversion scripts rely on so they
// work on hosts without coreutils. Unknown commands fall through to next.
func builtins(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		fn, ok := builtinCommands[args[0]]
		if !ok {
			return next(ctx, args)
		}

		hc := interp.HandlerCtx(ctx)
		flags, operands := splitFlags(args[1:])
		if err := fn(hc.Dir, flags, operands); err != nil {
			fmt.Fprintf(hc.Stderr, "%s: %v\n", args[0], err)
			return interp.ExitStatus(1)
		}
		return nil
	}
}

// splitFlags separates single-dash flag clusters ("-rf") from operands.
// Everything after "--" is an operand.
func splitFlags(args []string) (map[rune]bool, []string) {
	flags := map[rune]bool{}
	var operands []string
	for i, a := range args {
		if a == "--" {
			operands = append(operands, args[i+1:]...)
			break
		}
		if len(a) > 1 && strings.HasPrefix(a, "-") {
			for _, r := range a[1:] {
				flags[r] = true
			}
			continue
		}
		operands = append(operands, a)
	}
	return flags, operands
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func mkdirBuiltin(dir string, flags map[rune]bool, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing operand")
	}
	for _, a := range args {
		var err error
		if flags['p'] {
			err = os.MkdirAll(resolve(dir, a), 0755)
		} else {
			err = os.Mkdir(resolve(dir, a), 0755)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func cpBuiltin(dir string, flags map[rune]bool, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing destination operand")
	}
	recursive := flags['r'] || flags['R'] || flags['a']
	dst := resolve(dir, args[len(args)-1])
	srcs := args[:len(args)-1]

	dstInfo, dstErr := os.Stat(dst)
	intoDir := dstErr == nil && dstInfo.IsDir()
	if len(srcs) > 1 && !intoDir {
		return fmt.Errorf("target %s is not a directory", args[len(args)-1])
	}

	for _, s := range srcs {
		src := resolve(dir, s)
		info, err := os.Stat(src)
		if err != nil {
			return err
		}
		target := dst
		if intoDir {
			target = filepath.Join(dst, filepath.Base(src))
		}
		if info.IsDir() {
			if !recursive {
				return fmt.Errorf("-r not specified; omitting directory %s", s)
			}
			if err := platform.CopyTree(src, target); err != nil {
				return err
			}
			continue
		}
		if err := copyRegular(src, target, info.Mode().Perm()); err != nil {
			return err
		}
	}
	return nil
}

func copyRegular(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}

func mvBuiltin(dir string, flags map[rune]bool, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("missing destination operand")
	}
	dst := resolve(dir, args[len(args)-1])
	srcs := args[:len(args)-1]

	dstInfo, dstErr := os.Stat(dst)
	intoDir := dstErr == nil && dstInfo.IsDir()
	if len(srcs) > 1 && !intoDir {
		return fmt.Errorf("target %s is not a directory", args[len(args)-1])
	}

	for _, s := range srcs {
		src := resolve(dir, s)
		target := dst
		if intoDir {
			target = filepath.Join(dst, filepath.Base(src))
		}
		if err := os.Rename(src, target); err != nil {
			return err
		}
	}
	return nil
}

func rmBuiltin(dir string, flags map[rune]bool, args []string) error {
	if len(args) == 0 {
		if flags['f'] {
			return nil
		}
		return fmt.Errorf("missing operand")
	}
	for _, a := range args {
		p := resolve(dir, a)
		info, err := os.Lstat(p)
		if err != nil {
			if os.IsNotExist(err) && flags['f'] {
				continue
			}
			return err
		}
		if info.IsDir() {
			if !flags['r'] && !flags['R'] {
				return fmt.Errorf("cannot remove %s: is a directory", a)
			}
			err = os.RemoveAll(p)
		} else {
			err = os.Remove(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
