package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	domainscoring "github.com/preston-bernstein/cricket-scoring-service/internal/domain/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/logging"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoring"
	"github.com/preston-bernstein/cricket-scoring-service/internal/scoringclient"
	"github.com/preston-bernstein/cricket-scoring-service/internal/store"
)

type rootOptions struct {
	server   string
	timeout  time.Duration
	attempts int
	verbose  bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "scorectl",
		Short:        "Score and inspect cricket matches",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("SCORING_SERVER", "http://localhost:8080"), "scoring service base URL")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout per command")
	flags.IntVar(&opts.attempts, "attempts", 5, "attempts for a ball submission")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log retries to stderr")

	root.AddCommand(
		newReplayCmd(opts),
		newSubmitCmd(opts),
		newStateCmd(opts),
		newScorecardCmd(opts),
	)
	return root
}

func (o *rootOptions) client() *scoringclient.Client {
	cfg := scoringclient.Config{BaseURL: o.server, MaxAttempts: o.attempts}
	if o.verbose {
		cfg.Logger = logging.NewLogger(logging.Config{Level: "debug", Output: os.Stderr})
	}
	return scoringclient.NewClient(cfg)
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func newReplayCmd(opts *rootOptions) *cobra.Command {
	var (
		logDir    string
		scorecard bool
	)
	cmd := &cobra.Command{
		Use:   "replay MATCH_ID",
		Short: "Rebuild a match from its on-disk log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			fs, err := store.NewFSStore(logDir)
			if err != nil {
				return err
			}
			entries, err := fs.Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load log: %w", err)
			}
			m, err := scoring.Replay(entries)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			if scorecard {
				return printJSON(cmd.OutOrStdout(), m.Scorecard())
			}
			return printJSON(cmd.OutOrStdout(), m.State())
		},
	}
	cmd.Flags().StringVar(&logDir, "log-dir", "data/eventlog", "directory of the fs event log")
	cmd.Flags().BoolVar(&scorecard, "scorecard", false, "print the scorecard instead of the match state")
	return cmd
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		sequence int64
		file     string
	)
	cmd := &cobra.Command{
		Use:   "submit MATCH_ID",
		Short: "Submit one delivery",
		Long: "Submit one delivery read as JSON from --file (\"-\" for stdin).\n" +
			"Without --sequence the next sequence is taken from the live state.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			ev, err := readBall(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			client := opts.client()
			if sequence <= 0 {
				state, err := client.LiveScore(ctx, args[0])
				if err != nil {
					return err
				}
				sequence = state.LastSequence + 1
			}
			receipt, err := client.SubmitBall(ctx, args[0], sequence, ev)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), receipt)
		},
	}
	cmd.Flags().Int64Var(&sequence, "sequence", 0, "ball sequence number")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "ball event JSON file")
	return cmd
}

func newStateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state MATCH_ID",
		Short: "Print the live state of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			state, err := opts.client().LiveScore(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), state)
		},
	}
}

func newScorecardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scorecard MATCH_ID",
		Short: "Print batting and bowling figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			card, err := opts.client().Scorecard(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), card)
		},
	}
}

func readBall(stdin io.Reader, file string) (domainscoring.BallEvent, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return domainscoring.BallEvent{}, err
		}
		defer f.Close()
		r = f
	}
	var ev domainscoring.BallEvent
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return domainscoring.BallEvent{}, fmt.Errorf("decoding ball: %w", err)
	}
	return ev, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
