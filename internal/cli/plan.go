package cli

import (
	"fmt"
	"strings"

	"github.com/sampo-dev/sampo/internal/planner"
	"github.com/sampo-dev/sampo/internal/release"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the release plan without applying it",
	Long:  "Reads pending changesets, resolves them against the workspace, and prints the version bumps and requirement rewrites a release would apply. Nothing on disk is changed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := release.Load(".")
		if err != nil {
			fail(err)
			return nil
		}

		plan, _, err := engine.Plan()
		if err != nil {
			fail(err)
			return nil
		}

		printPlan(plan)
		return nil
	},
}

func printPlan(plan *planner.Plan) {
	if len(plan.Entries) == 0 {
		fmt.Println("No pending changes.")
		return
	}

	fmt.Printf("Planned releases (%d package(s)):\n\n", len(plan.Entries))
	for _, entry := range plan.Entries {
		reasons := make([]string, len(entry.Reasons))
		for i, r := range entry.Reasons {
			reasons[i] = string(r)
		}
		fmt.Printf("  %s: %s -> %s [%s]\n", entry.Id, entry.From, entry.To, strings.Join(reasons, ", "))
	}

	if len(plan.RequirementRewrites) > 0 {
		fmt.Printf("\nDependency requirement rewrites (%d):\n\n", len(plan.RequirementRewrites))
		for _, rw := range plan.RequirementRewrites {
			fmt.Printf("  %s depends on %s -> %s\n", rw.Dependent, rw.Dependency, rw.NewVersion)
		}
	}
}
