/*
Copyright © 2024 Jonathan Taylor <jonrtaylor12@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jt05610/dpn"
	"github.com/jt05610/dpn/annotate"
	"github.com/jt05610/dpn/netfile"
	"github.com/jt05610/dpn/report"
	"github.com/jt05610/dpn/sim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bpmnFile   string
	trials     int
	steps      int
	seed       uint64
	workers    int
	timeout    time.Duration
	completion string
	output     string
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation of a net file",
	Long: `Run many randomized executions of an annotated net and report, for each
distinct sequence of fired transition labels, how often it occurred and its
mean duration. Flow and task annotations found in the net file override those
read from --bpmn.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" {
			return errors.New("an input net file is required")
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		net, err := loadNet(ctx, inputFile, bpmnFile)
		if err != nil {
			return err
		}
		cfg, err := simConfig(cmd)
		if err != nil {
			return err
		}
		res, err := sim.Run(ctx, net, cfg)
		if err != nil {
			if res == nil || !errors.Is(err, sim.ErrTimeout) {
				return err
			}
			logger.Warn("reporting partial results", zap.Error(err))
		}
		rep := report.Aggregate(res.Outcomes)
		rep.RunID = res.RunID
		return writeReport(cmd.OutOrStdout(), rep)
	},
}

// simConfig layers explicit flags over the environment.
func simConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := environ.Config(logger)
	flags := cmd.Flags()
	if flags.Changed("trials") {
		cfg.Trials = trials
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("completion") {
		c, err := sim.ParseCompletion(completion)
		if err != nil {
			return cfg, err
		}
		cfg.Completion = c
	}
	switch {
	case flags.Changed("seed"):
		cfg.Seed = seed
	case !environ.SeedSet:
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	logger.Info("seed", zap.Uint64("seed", cfg.Seed))
	return cfg, nil
}

func loadNet(ctx context.Context, path, bpmn string) (*dpn.Net, error) {
	f, err := netfile.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	var extra *annotate.Payload
	if bpmn != "" {
		in, err := os.Open(bpmn)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = in.Close()
		}()
		if extra, err = annotate.ParseBPMN(in); err != nil {
			return nil, fmt.Errorf("%s: %w", bpmn, err)
		}
	}
	net, unresolved, err := f.Net(annotate.NewBinder(logger), extra)
	if err != nil {
		return nil, err
	}
	if len(unresolved) > 0 {
		logger.Warn("annotations left unbound", zap.Int("count", len(unresolved)))
	}
	return net, nil
}

func writeReport(w io.Writer, rep *report.Report) error {
	switch output {
	case "json":
		return rep.WriteJSON(w)
	case "table":
		return rep.WriteTable(w)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	def := sim.DefaultConfig()
	simulateCmd.Flags().StringVar(&bpmnFile, "bpmn", "", "annotated BPMN diagram to read probabilities and durations from")
	simulateCmd.Flags().IntVarP(&trials, "trials", "n", def.Trials, "number of trials")
	simulateCmd.Flags().IntVarP(&steps, "steps", "s", def.Steps, "step budget per trial")
	simulateCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default from DPNSIM_SEED or the clock)")
	simulateCmd.Flags().IntVarP(&workers, "workers", "w", 0, "concurrent workers (default one per CPU)")
	simulateCmd.Flags().DurationVar(&timeout, "timeout", 0, "wall-clock limit for the whole run")
	simulateCmd.Flags().StringVar(&completion, "completion", "sink", "completion rule: sink or cover")
	simulateCmd.Flags().StringVarP(&output, "output", "o", "table", "report format: table or json")
}
