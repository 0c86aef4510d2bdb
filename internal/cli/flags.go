package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/blendkey/internal/config"
)

// assignment is a parsed --set Name=weight pair.
type assignment struct {
	name   string
	weight float64
}

// parseAssignments parses Name=weight pairs, splitting on the last '='.
func parseAssignments(values []string) ([]assignment, error) {
	out := make([]assignment, 0, len(values))

	for _, raw := range values {
		i := strings.LastIndex(raw, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid --set %q: expected Name=weight", raw)
		}

		name := strings.TrimSpace(raw[:i])
		if name == "" {
			return nil, fmt.Errorf("invalid --set %q: empty blend-shape name", raw)
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(raw[i+1:]), 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid --set %q: weight must be a finite number", raw)
		}

		out = append(out, assignment{name: name, weight: w})
	}

	return out, nil
}

// registerTargetFlags adds the config-backed target and clip-format flags.
// Their values are read back through config.FromContext so that env vars
// and the config file apply when the flags are not given.
func registerTargetFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("target", "t", "", "path of the target mesh below the rig root (default: the root)")
	f.String("clip-format", config.ClipFormatYAML, "clip format when the output path has no extension: yaml, json")

	cmd.ValidArgsFunction = completeRigArg
	_ = cmd.RegisterFlagCompletionFunc("target", completeTargets)
	_ = cmd.RegisterFlagCompletionFunc("clip-format",
		cobra.FixedCompletions([]string{config.ClipFormatYAML, config.ClipFormatJSON}, cobra.ShellCompDirectiveNoFileComp))
}

// registerFormatFlag adds a --format flag restricted to allowed values.
func registerFormatFlag(cmd *cobra.Command, target *string, def string, allowed ...string) {
	cmd.Flags().StringVar(target, "format", def, "output format: "+strings.Join(allowed, ", "))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(allowed, cobra.ShellCompDirectiveNoFileComp))
}

// checkFormat validates a --format value.
func checkFormat(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}

	return &ExitError{Code: exitUsage, Err: fmt.Errorf("invalid --format %q: must be one of %s", value, strings.Join(allowed, ", "))}
}
