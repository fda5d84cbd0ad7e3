// Package cli wires the release engine, the pre-release controller, and
// workspace discovery into the cobra command tree cmd/sampo executes. It is
// intentionally thin: no prompts, no interactive flags — the interactive
// surface is an external collaborator this tree never tries to be.
package cli

import (
	"fmt"
	"os"

	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/spf13/cobra"
)

var log = logx.For("cli")

// exitCodes maps each recoverable error kind to a distinct process exit
// code, so scripts driving sampo can branch without string-matching stderr.
var exitCodes = map[sampoerr.Kind]int{
	sampoerr.KindNotInitialized:     10,
	sampoerr.KindNoPackagesFound:    11,
	sampoerr.KindDuplicatePackage:   12,
	sampoerr.KindInvalidConfig:      13,
	sampoerr.KindInvalidChangeset:   14,
	sampoerr.KindUnknownPackage:     15,
	sampoerr.KindAmbiguousPackage:   16,
	sampoerr.KindInvalidVersion:     17,
	sampoerr.KindConstraintViolated: 18,
	sampoerr.KindBranchNotAllowed:   19,
	sampoerr.KindIoError:            20,
}

// RootCmd is the top-level command cmd/sampo hands to cobra (or a wrapper
// like fang, should one ever be adopted).
var RootCmd = &cobra.Command{
	Use:   "sampo",
	Short: "Sampo plans and applies coordinated releases across a polyglot monorepo",
	Long:  "Sampo reads pending changesets, computes a coordinated version bump across every affected package and its dependents, and applies it: manifests, lockfiles, and changelogs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		format, _ := cmd.Flags().GetString("log-format")
		logx.Configure(level, format, os.Stderr)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")

	RootCmd.AddCommand(planCmd)
	RootCmd.AddCommand(releaseCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(prereleaseCmd)
}

// fail prints err and exits with the code mapped from its Kind, or 1 for an
// error the engine didn't classify.
func fail(err error) {
	log.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, "Error:", err)

	var kind sampoerr.Kind
	if ke, ok := err.(interface{ Kind() sampoerr.Kind }); ok {
		kind = ke.Kind()
	}
	if code, ok := exitCodes[kind]; ok {
		os.Exit(code)
	}
	os.Exit(1)
}
