// Command executor serves deep-dump execution requests over TCP and offers
// a static strategy-coverage check, the Go analogue of the original's
// `python -m utbot_executor`.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapshotrun/executor/internal/coverage"
	"github.com/snapshotrun/executor/internal/harness"
	"github.com/snapshotrun/executor/internal/listener"
	"github.com/snapshotrun/executor/internal/logx"
	"github.com/snapshotrun/executor/internal/serializer"
)

var (
	logfile  string
	loglevel string
)

func main() {
	root := &cobra.Command{
		Use:   "executor",
		Short: "Listen socket stream and execute function value",
	}
	root.PersistentFlags().StringVar(&logfile, "logfile", "", "write logs to this file instead of stderr")
	root.PersistentFlags().StringVar(&loglevel, "loglevel", logx.LevelError, "debug|info|error")

	root.AddCommand(serveCmd(), coverageCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve hostname port",
		Short: "Accept execution requests on a TCP (hostname, port) pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid port %q: %w", args[1], err)
			}
			log, err := logx.New(logx.ParseLevel(loglevel), logfile)
			if err != nil {
				return err
			}
			defer log.Sync()

			srv := &listener.Server{
				Hostname: args[0],
				Port:     port,
				Log:      log,
				Handle:   handleRequest,
			}
			return srv.ListenAndServe()
		},
	}
}

func coverageCmd() *cobra.Command {
	var pkgPattern string
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Report exported types that would fail to serialize",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := coverage.FindUnserializableTypes(pkgPattern)
			if err != nil {
				return err
			}
			for _, r := range reports {
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			if len(reports) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pkgPattern, "pkg", "./...", "package pattern to scan")
	return cmd
}

// executeRequest is the payload carried by listener.Request for the one
// request kind this executor understands: invoke a zero-argument callable
// previously registered under Name and dump its result plus any mutation to
// State.
type executeRequest struct {
	Name string `json:"name"`
}

type executeResponse struct {
	ResultID   serializer.ObjectID   `json:"result_id"`
	StateID    serializer.ObjectID   `json:"state_id"`
	ChangedIDs []serializer.ObjectID `json:"changed_ids"`
	Dump       json.RawMessage       `json:"dump"`
	Panicked   bool                  `json:"panicked,omitempty"`
}

func handleRequest(req listener.Request) (json.RawMessage, error) {
	var execReq executeRequest
	if err := json.Unmarshal(req.Payload, &execReq); err != nil {
		return nil, fmt.Errorf("decoding request payload: %w", err)
	}

	fn, state, ok := lookupCallable(execReq.Name)
	if !ok {
		return nil, fmt.Errorf("no registered callable named %q", execReq.Name)
	}

	result := harness.Run(fn, state)
	if result.Err != nil {
		return nil, result.Err
	}

	wire, err := serializer.EncodeDump(result.Dump)
	if err != nil {
		return nil, fmt.Errorf("encoding dump: %w", err)
	}

	resp := executeResponse{
		ResultID:   result.ResultID,
		StateID:    result.StateID,
		ChangedIDs: result.ChangedIDs,
		Dump:       wire,
		Panicked:   result.Panicked,
	}
	return json.Marshal(resp)
}

// lookupCallable resolves a request's callable name to a harness.Func and
// its mutable state. The registry itself — how user test code gets loaded
// and bound to a name — is outside this module's scope (SPEC_FULL.md §1);
// an empty registry means every request fails with "no registered
// callable", which is the correct behavior until a caller wires one in.
func lookupCallable(name string) (harness.Func, any, bool) {
	fn, ok := callableRegistry[name]
	if !ok {
		return nil, nil, false
	}
	return fn.Func, fn.State, true
}

type registeredCallable struct {
	Func  harness.Func
	State any
}

var callableRegistry = map[string]registeredCallable{}
