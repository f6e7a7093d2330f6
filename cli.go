package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"speccy/emu/log"
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run a ROM in the emulator."`
		Debug   Debug   `cmd:"" help:"Run a ROM under the interactive debugger."`
		Disasm  Disasm  `cmd:"" help:"Disassemble a binary file."`
		Ctl     Ctl     `cmd:"" help:"Control a running emulator."`
		Version Version `cmd:"" help:"Show speccy version."`

		Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		Config string     `help:"Configuration file to use instead of the default one." type:"existingfile" placeholder:"FILE"`
	}

	Run struct {
		ROMPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" optional:"" type:"existingfile"`

		SNA        string   `name:"sna" help:"Load a 48K .sna snapshot after power up." type:"existingfile"`
		Monitor    int32    `name:"monitor" help:"Monitor index to use." default:"0"`
		Scale      int      `name:"scale" help:"Window scale factor, overrides the configuration."`
		Fast       bool     `name:"fast" help:"Don't throttle emulation to 50 frames per second."`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Port       int      `name:"port" help:"Serve remote control on this port, see ctl."`
	}

	Debug struct {
		ROMPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" optional:"" type:"existingfile"`

		SNA    string    `name:"sna" help:"Load a 48K .sna snapshot after power up." type:"existingfile"`
		Listen string    `name:"listen" help:"Serve the remote debugger on host:port instead of a terminal prompt."`
		Break  []address `name:"break" help:"Set a breakpoint before starting (repeatable)." placeholder:"ADDR"`
		Trace  *outfile  `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
	}

	Disasm struct {
		Path   string  `arg:"" name:"/path/to/file" type:"existingfile"`
		Origin address `name:"origin" help:"Address the file is loaded at." default:"0"`
		Start  address `name:"start" help:"Address to start disassembling at, defaults to origin."`
		Count  int     `name:"count" short:"n" help:"Maximum number of instructions, 0 for all."`
	}

	Ctl struct {
		Action string `arg:"" enum:"pause,resume,reset,stop" help:"One of pause, resume, reset or stop."`
		Port   int    `name:"port" help:"Port of the emulator remote control." required:""`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":    "16K ROM image, defaults to the one in the configuration.",
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("speccy"),
		kong.Description("ZX Spectrum 48K emulator and Z80 debugger."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars,
	}, options...)
	return kong.New(cli, options...)
}

func parseArgs(args []string) (CLI, string) {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	cmd, _, _ := strings.Cut(ctx.Command(), " ")
	return cli, cmd
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	cmd := ctx.Command()
	if strings.HasPrefix(cmd, "run") || strings.HasPrefix(cmd, "debug") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask
// and enables debug logging for them.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s := tok.Value.(string)

	var nolog bool
	var names []string
	for _, v := range strings.Split(s, ",") {
		if v == "no" {
			nolog = true
			continue
		}
		names = append(names, v)
	}

	if nolog {
		if len(names) != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		*lm = 0
		log.Disable()
		return nil
	}

	mask, err := log.ParseModules(strings.Join(names, ","))
	if err != nil {
		return err
	}
	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

// An address is a 16-bit address accepting decimal, 0x or $ hexadecimal.
type address uint16

// Decode implements kong.MapperValue interface.
func (a *address) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("address", &s); err != nil {
		return err
	}
	v, err := parseAddr(s)
	if err != nil {
		return err
	}
	*a = address(v)
	return nil
}

func parseAddr(s string) (uint16, error) {
	if hex, ok := strings.CutPrefix(s, "$"); ok {
		s = "0x" + hex
	}
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
