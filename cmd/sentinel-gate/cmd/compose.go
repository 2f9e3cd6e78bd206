package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sentinel-Gate/Sentinelgate/internal/compose"
)

var (
	composeTransport string
	composeHandlers  []string
	composeServices  []string
	composeOutput    string
)

var composeCmd = &cobra.Command{
	Use:   "compose [--transport PATH] [--handler PATH]... [--service NAME=PATH]... --output PATH [USER_COMPONENT...]",
	Short: "Build and validate a component composition",
	Long: `Compose links a transport, an ordered set of middleware handlers, service
components (session store, identity), and user capability components into
one composition, the same leaves-first algorithm (load, inspect, discover
services, wrap capabilities, link the chain, validate imports) that
produces the chain "serve" runs at startup. The session-store runtime is
not resolved here; only "serve" does that.

Unlike a WebAssembly component linker, this composer never emits a single
runnable binary: --output instead receives a YAML plan recording the
validated link order, written for inspection and CI gating. "serve" reads
its own root compose.yaml (internal/config's compose.manifest_path)
independently and performs the same linking live, against its compiled-in
component registry.`,
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&composeTransport, "transport", "", "transport/root middleware component manifest")
	composeCmd.Flags().StringArrayVar(&composeHandlers, "handler", nil, "middleware component manifest, in link order (repeatable)")
	composeCmd.Flags().StringArrayVar(&composeServices, "service", nil, "service component manifest as NAME=PATH (repeatable)")
	composeCmd.Flags().StringVar(&composeOutput, "output", "", "path to write the validated composition plan")
	_ = composeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	var manifestPaths []string
	if composeTransport != "" {
		manifestPaths = append(manifestPaths, composeTransport)
	}
	manifestPaths = append(manifestPaths, composeHandlers...)
	for _, spec := range composeServices {
		_, path, ok := strings.Cut(spec, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "compose: --service value %q is not NAME=PATH\n", spec)
			os.Exit(3)
		}
		manifestPaths = append(manifestPaths, path)
	}
	manifestPaths = append(manifestPaths, args...)

	if len(manifestPaths) == 0 {
		fmt.Fprintln(os.Stderr, "compose: no component manifests given")
		os.Exit(3)
	}

	plan, err := compose.ValidateWiring(manifestPaths)
	if err != nil {
		var wiringErr *compose.WiringError
		if errors.As(err, &wiringErr) {
			fmt.Fprintln(os.Stderr, wiringErr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(3)
	}

	data, err := yaml.Marshal(plan)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compose: encoding plan: %v\n", err)
		os.Exit(3)
	}
	if err := os.WriteFile(composeOutput, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "compose: writing %s: %v\n", composeOutput, err)
		os.Exit(3)
	}

	fmt.Printf("composition valid: %d middleware, %d capabilities, %d services -> %s\n",
		len(plan.Middleware), len(plan.Capabilities), len(plan.Services), composeOutput)
	return nil
}
