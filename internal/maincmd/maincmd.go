// Package maincmd implements the refal command-line driver: translate one
// REFAL-5 source file and, if it defines a callable Go/go entry point, run
// it with any trailing arguments seeded as its view field.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/strusov/refalgo/builtin"
	"github.com/strusov/refalgo/cellvm"
	"github.com/strusov/refalgo/config"
	"github.com/strusov/refalgo/diag"
	"github.com/strusov/refalgo/rmachine"
	"github.com/strusov/refalgo/rtrie"
	"github.com/strusov/refalgo/translator"
)

const binName = "refal"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <source-file> [-- <arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <source-file> [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Translator and interpreter for the REFAL-5 programming language.

<source-file> is compiled and, if it defines a callable "Go" (or "go")
function, run with any arguments following "--" wrapped one per bracket
pair and handed to it as its view field.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Every translator and interpreter limit documented in spec.md is also
overridable by its REFAL_* environment variable; see config.FromEnvironment.
`, binName)
)

// Cmd is the refal command's flag and argument surface, parsed by
// mainer.Parser the way the teacher's own Cmd is.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	sourceFile string
	progArgs   []string
}

// SetArgs implements mainer's flag-parser callback, splitting the first
// positional argument (the source file) from everything after it (the
// program's own argv).
func (c *Cmd) SetArgs(args []string) {
	if len(args) > 0 {
		c.sourceFile = args[0]
		c.progArgs = args[1:]
	}
}

// SetFlags implements mainer's flag-parser callback. refal has no flags
// whose meaning depends on which others were set, so there is nothing to
// record beyond what the `flag` struct tags already populated.
func (c *Cmd) SetFlags(map[string]bool) {}

// Validate implements mainer's flag-parser callback.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if c.sourceFile == "" {
		return errors.New("no source file specified")
	}
	return nil
}

// Main is the command's entry point, called by cmd/refal's main with
// os.Args and the current process's Stdio.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.run(ctx, stdio); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

// run translates sourceFile and, if it defines a callable entry point,
// executes it with progArgs seeded into its view field.
func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio) error {
	src, err := os.ReadFile(c.sourceFile)
	if err != nil {
		return err
	}

	cfg, err := config.FromEnvironment()
	if err != nil {
		return err
	}

	tab := builtin.NewStandardTable(stdio.Stdin, stdio.Stdout)
	ids := rtrie.New(1024)
	translator.SeedBuiltins(ids, tab)
	vm := cellvm.NewArena(cellvm.DefaultSize)

	var msgs diag.ErrorList
	loader := translator.FileLoader{Dir: filepath.Dir(c.sourceFile)}
	err = translator.Translate(cfg.Translator, vm, ids, &msgs, loader, c.sourceFile, src)
	msgs.PrintTo(stdio.Stderr)
	if err != nil {
		return err
	}

	entry := lookupEntry(ids)
	if !entry.IsCallable() {
		return nil
	}

	head, tail := rmachine.SeedArgv(vm, c.progArgs)
	verdict, err := rmachine.Run(ctx, cfg.Interpreter, vm, ids, tab, cellvm.Index(entry.Payload), head, tail)
	if err != nil {
		return err
	}
	if verdict != builtin.Matched {
		return fmt.Errorf("%s: no sentence matched the program's arguments", c.sourceFile)
	}
	return nil
}

// lookupEntry resolves the program's entry point, "Go" taking precedence
// over its lowercase spelling "go" the way the teacher's own toolchain
// favors the capitalized form when both are present.
func lookupEntry(ids *rtrie.Trie) rtrie.Value {
	if v := ids.GetValue([]rune("Go")); v.IsCallable() {
		return v
	}
	return ids.GetValue([]rune("go"))
}
