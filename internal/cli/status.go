package cli

import (
	"fmt"
	"sort"

	"github.com/sampo-dev/sampo/internal/release"
	"github.com/sampo-dev/sampo/internal/workspace"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List pending changesets grouped by package",
	Long:  "A read-only listing of which packages have pending changesets, without running the planner.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := release.Load(".")
		if err != nil {
			fail(err)
			return nil
		}

		pending, warnings, err := engine.Status()
		if err != nil {
			fail(err)
			return nil
		}

		if len(pending) == 0 {
			fmt.Println("No pending changesets.")
		} else {
			ids := make([]workspace.Id, 0, len(pending))
			for id := range pending {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

			for _, id := range ids {
				fmt.Printf("%s:\n", id)
				for _, entry := range pending[id] {
					fmt.Printf("  %s (%s)\n", entry.Path, entry.Level)
				}
			}
		}

		for _, w := range warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}
