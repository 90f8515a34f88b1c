// oidvm CLI - interns text assets and evaluates message sends against a VM
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/oidvm/config"
	"github.com/chazu/oidvm/vm"
)

// loadFlags collects repeated -load flags.
type loadFlags []string

func (l *loadFlags) String() string     { return strings.Join(*l, ",") }
func (l *loadFlags) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	var loads loadFlags
	configDir := flag.String("config", "", "Directory holding oidvm.toml (default: search upward from cwd)")
	verbosity := flag.Int("v", 0, "Log verbosity (overrides [log] verbosity when nonzero)")
	interactive := flag.Bool("i", false, "Read send expressions from stdin")
	showWire := flag.Bool("wire", false, "Also print each result as hex CBOR")
	flag.Var(&loads, "load", "Intern a text file, named @basename in expressions (repeatable)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: oidvm [options] [receiver selector [args...]]\n\n")
		fmt.Fprintf(os.Stderr, "Evaluates one message send, or a send per line with -i.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  oidvm 3 + 4                      # 7\n")
		fmt.Fprintf(os.Stderr, "  oidvm 7 // 2                     # 3\n")
		fmt.Fprintf(os.Stderr, "  oidvm \"'hello' , ' world'\"       # hello world\n")
		fmt.Fprintf(os.Stderr, "  oidvm -load notes.txt @notes.txt size\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbosity != 0 {
		cfg.Log.Verbosity = *verbosity
	}
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogFile())

	vmInst := vm.New(cfg.Options())
	s := newSession(vmInst, os.Stdout)
	s.wire = *showWire

	status := run(s, cfg, loads, flag.Args(), *interactive)
	if err := vmInst.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		status = 1
	}
	os.Exit(status)
}

func loadConfig(dir string) (*config.Config, error) {
	if dir != "" {
		return config.Load(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	return cfg, nil
}

// run loads assets and evaluates the command line or stdin, returning the
// exit status.
func run(s *session, cfg *config.Config, loads, args []string, interactive bool) int {
	for _, path := range append(cfg.AssetPaths(), loads...) {
		if err := s.load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if len(args) > 0 {
		if err := s.eval(strings.Join(args, " ")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	if interactive {
		runREPL(s, os.Stdin)
	}
	return 0
}

// runREPL evaluates one send per line until EOF or "exit".
func runREPL(s *session, in io.Reader) {
	fmt.Fprintln(s.out, "oidvm (type 'exit' to quit, ':help' for commands)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, ">> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return
		case strings.HasPrefix(line, ":"):
			handleREPLCommand(s, line)
			continue
		}

		if err := s.eval(line); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
	fmt.Fprintln(s.out)
}

func handleREPLCommand(s *session, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		fmt.Fprintln(s.out, "  receiver selector          unary send, e.g. 3 negated")
		fmt.Fprintln(s.out, "  receiver op arg            binary send, e.g. 3 + 4")
		fmt.Fprintln(s.out, "  receiver key: arg ...      keyword send, e.g. 'abc' at: 1")
		fmt.Fprintln(s.out, "  :load <file>               intern a text file as @basename")
		fmt.Fprintln(s.out, "  :stats                     object table usage")
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :load <file>")
			return
		}
		if err := s.load(fields[1]); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	case ":stats":
		fmt.Fprintf(s.out, "%d live objects, %d slots, %d selectors\n",
			s.vm.Objects.Live(), s.vm.Objects.Capacity(), s.vm.Dispatcher.Selectors().Len())
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", fields[0])
	}
}
