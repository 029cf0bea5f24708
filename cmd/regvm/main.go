package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/oisee/regvm/pkg/batch"
	"github.com/oisee/regvm/pkg/byteio"
	"github.com/oisee/regvm/pkg/cpu"
	"github.com/oisee/regvm/pkg/inst"
	"github.com/oisee/regvm/pkg/trace"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	var (
		cfgPath   string
		verbosity int
		logFile   string
		cfg       Config
	)

	rootCmd := &cobra.Command{
		Use:          "regvm",
		Short:        "Register-machine bytecode interpreter",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = loadConfig(cfgPath); err != nil {
				return err
			}
			if cmd.Flags().Changed("verbose") {
				cfg.Log.Verbosity = verbosity
			}
			if cmd.Flags().Changed("log-file") {
				cfg.Log.File = logFile
			}
			var path *string
			if cfg.Log.File != "" {
				path = &cfg.Log.File
			}
			commonlog.Configure(cfg.Log.Verbosity, path)
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "TOML config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Log verbosity (repeat for more)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log to file instead of stderr")

	// run command
	var (
		stack      int
		maxSteps   uint64
		input      string
		raw        bool
		tracePath  string
		traceLimit int
		dumpPath   string
	)

	runCmd := &cobra.Command{
		Use:   "run [program]",
		Short: "Run a built-in program on stdin/stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := lookupProgram(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("stack") {
				cfg.Machine.Stack = stack
			}
			if cmd.Flags().Changed("max-steps") {
				cfg.Machine.MaxSteps = maxSteps
			}
			if cmd.Flags().Changed("raw") {
				cfg.Terminal.Raw = raw
			}

			in := stdin
			if cmd.Flags().Changed("input") {
				in = strings.NewReader(input)
			} else if cfg.Terminal.Raw && in == os.Stdin {
				restore, err := rawStdin()
				if err != nil {
					return errors.Wrap(err, "raw mode")
				}
				defer restore()
			}

			stream := byteio.NewStream(in, cmd.OutOrStdout())
			opts := cfg.machineOptions()
			var rec *trace.Recorder
			if tracePath != "" {
				rec = trace.NewRecorder(traceLimit)
				opts = append(opts, cpu.WithTracer(rec))
			}

			m, err := cpu.New(prog, stream, opts...)
			if err != nil {
				return err
			}
			runErr := m.Run()
			if err := stream.Flush(); err != nil && runErr == nil {
				runErr = err
			}

			if rec != nil {
				if err := writeTrace(tracePath, rec.Events()); err != nil {
					return err
				}
			}
			if m.Status() == cpu.Faulted && dumpPath != "" {
				if err := trace.SaveSnapshot(dumpPath, trace.Capture(m)); err != nil {
					return err
				}
			}
			if runErr != nil {
				return errors.Wrap(runErr, args[0])
			}
			return nil
		},
	}
	runCmd.Flags().IntVar(&stack, "stack", cpu.DefaultStackCapacity, "Operand stack capacity in words")
	runCmd.Flags().Uint64Var(&maxSteps, "max-steps", 0, "Fault after this many instructions (0 = unlimited)")
	runCmd.Flags().StringVar(&input, "input", "", "Use this string as input instead of stdin")
	runCmd.Flags().BoolVar(&raw, "raw", false, "Put a terminal stdin in raw mode")
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSON execution trace to this file")
	runCmd.Flags().IntVar(&traceLimit, "trace-limit", 0, "Keep only the last N trace events (0 = all)")
	runCmd.Flags().StringVar(&dumpPath, "dump", "", "Write a post-mortem snapshot here if the program faults")

	// batch command
	var numWorkers int

	batchCmd := &cobra.Command{
		Use:   "batch [program] [inputs]",
		Short: "Run a program once per line of an inputs file (- for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := lookupProgram(args[0])
			if err != nil {
				return err
			}
			var r io.Reader = stdin
			if args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			inputs, err := readLines(r)
			if err != nil {
				return err
			}

			pool := batch.NewPool(numWorkers, cfg.machineOptions()...)
			outcomes, err := pool.Run(prog, inputs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range outcomes {
				status := "halt"
				if o.Err != nil {
					status = cpu.KindOf(o.Err).String()
				}
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", o.Index+1, strconv.Quote(string(o.Input)), status, strconv.Quote(string(o.Output)))
			}
			halted, faulted := pool.Stats()
			fmt.Fprintf(out, "%d halted, %d faulted\n", halted, faulted)
			return nil
		},
	}
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")

	// disasm command
	disasmCmd := &cobra.Command{
		Use:   "disasm [program]",
		Short: "List a built-in program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := lookupProgram(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), inst.DisassembleProgram(prog))
			return nil
		},
	}

	// list command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in programs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range programNames() {
				b := builtins[name]
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %4d  %s\n", name, len(b.Build()), b.Summary)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, batchCmd, disasmCmd, listCmd)
	return rootCmd
}

func writeTrace(path string, events []trace.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := trace.WriteJSON(f, events); err != nil {
		return err
	}
	return f.Close()
}

// readLines splits r into inputs, one per line. The newline stays part of
// each input so line-oriented programs see it.
func readLines(r io.Reader) ([][]byte, error) {
	var inputs [][]byte
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			inputs = append(inputs, line)
		}
		if err == io.EOF {
			return inputs, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
