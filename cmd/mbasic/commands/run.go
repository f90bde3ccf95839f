package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mbasic/internal/berrors"
	"mbasic/internal/diag"
	"mbasic/internal/interp"
	"mbasic/internal/parser"
	"mbasic/internal/ports"
	"mbasic/internal/runtime"
	"mbasic/internal/values"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file.bas>",
		Short: "Run an MBASIC program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
}

func runFile(path string) error {
	logger := diag.New(flagTrace)
	defer logger.Sync()

	if flagBaseDir != "" {
		if err := os.Chdir(flagBaseDir); err != nil {
			return fmt.Errorf("base-dir: %w", err)
		}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, perr := parser.Parse(string(src))
	if perr != nil {
		return perr
	}

	console := ports.NewStdConsole()
	console.SetWidth(flagWidth)
	fs := ports.NewOSFileSystem()

	rt := runtime.New()
	if flagHasSeed {
		rt.Rand.Seed(flagSeed)
	}
	rt.LoadProgram(prog)
	logger.Infow("program loaded", "file", path, "run_id", rt.RunID.String())

	ip := interp.New(rt, console, fs)

	current := path
	for {
		for rt.Reason == runtime.Running {
			if flagTrace {
				logger.Stmt(rt.PC.Line, rt.PC.Stmt)
			}
			ip.Step()
		}

		switch rt.Reason {
		case runtime.ErrorHalt:
			msg := berrors.MessageFor(berrors.Code(rt.ErrCode))
			logger.Trapped(rt.ErrCode, rt.ErrLine, msg)
			return fmt.Errorf("?%s in %d", msg, rt.ErrLine)

		case runtime.StopHalt, runtime.BreakHalt, runtime.Breakpoint:
			return nil

		case runtime.EndHalt:
			req := rt.ChainRequest
			if req == nil {
				return nil
			}
			rt.ChainRequest = nil
			if req.Filename == "" {
				req.Filename = current // RUN / RUN n: re-run the current program
			}
			if err := chainTo(rt, req); err != nil {
				return err
			}
			current = req.Filename
			logger.Infow("chained", "file", req.Filename, "keep_all", req.KeepAll, "keep_vars", req.KeepVars)
		}
	}
}

// chainTo loads the file named by req into rt, preserving variables per
// req.KeepAll/KeepVars (spec §4.5/§6: CHAIN keeps only COMMON-declared
// variables unless ALL is given; RUN with no R keeps none).
func chainTo(rt *runtime.Runtime, req *runtime.ChainRequest) error {
	src, err := os.ReadFile(req.Filename)
	if err != nil {
		return fmt.Errorf("chain %s: %w", req.Filename, err)
	}
	prog, perr := parser.Parse(string(src))
	if perr != nil {
		return perr
	}

	var saved map[string]values.Value
	if req.KeepVars && !req.KeepAll {
		saved = make(map[string]values.Value, len(rt.Common))
		for _, name := range rt.Common {
			saved[runtime.StoreKey(name)] = rt.GetScalar(name)
		}
	}
	if !req.KeepAll {
		rt.Scalars = make(map[string]values.Value)
		rt.Arrays = make(map[string]*runtime.Array)
	}

	rt.LoadProgram(prog)
	for k, v := range saved {
		rt.Scalars[k] = v
	}

	if req.HasStartLine {
		if addr, ok := rt.Table.FindLine(req.StartLine); ok {
			rt.PC = addr
			rt.Reason = runtime.Running
		}
	}
	return nil
}
