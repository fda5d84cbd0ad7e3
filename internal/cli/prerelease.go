package cli

import (
	"fmt"

	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/discovery"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/prerelease"
	"github.com/spf13/cobra"
)

var prereleaseCmd = &cobra.Command{
	Use:   "prerelease",
	Short: "Enter, exit, or switch a pre-release cycle",
}

func init() {
	prereleaseCmd.AddCommand(prereleaseEnterCmd)
	prereleaseCmd.AddCommand(prereleaseExitCmd)
	prereleaseCmd.AddCommand(prereleaseSwitchCmd)
}

func loadController() (*prerelease.Controller, error) {
	root, sampoDir, err := discovery.FindRoot(".")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(sampoDir)
	if err != nil {
		return nil, err
	}
	adapters := ecosystem.Registry()
	active, _, err := discovery.Discover(root, cfg, adapters)
	if err != nil {
		return nil, err
	}
	return prerelease.New(root, sampoDir, active, adapters), nil
}

var prereleaseEnterCmd = &cobra.Command{
	Use:   "enter <label> [package...]",
	Short: "Enter a pre-release cycle under the given label",
	Long:  "Bumps each named package (or every publishable package, if none are named) to the next patch version and attaches the pre-release label. Subsequent releases in this cycle increment the pre-release counter instead of cutting a stable version.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := loadController()
		if err != nil {
			fail(err)
			return nil
		}
		refs := args[1:]
		if len(refs) == 0 {
			for _, pkg := range ctrl.Workspace.All() {
				if pkg.Publishable {
					refs = append(refs, pkg.Id.String())
				}
			}
		}
		state, err := ctrl.Enter(args[0], refs)
		if err != nil {
			fail(err)
			return nil
		}
		fmt.Printf("Entered pre-release %q for: %v\n", state.Label, state.Packages)
		return nil
	},
}

var prereleaseExitCmd = &cobra.Command{
	Use:   "exit [package...]",
	Short: "Exit the current pre-release cycle",
	Long:  "Restores preserved changesets to the pending changeset directory and strips the pre-release suffix from each named package's version (or every package in the cycle, if none are named).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := loadController()
		if err != nil {
			fail(err)
			return nil
		}
		state, err := ctrl.Exit(args)
		if err != nil {
			fail(err)
			return nil
		}
		if state.Mode == prerelease.ModeStable {
			fmt.Println("Exited pre-release; workspace is stable.")
		} else {
			fmt.Printf("Exited pre-release for the given packages; still in %q for: %v\n", state.Label, state.Packages)
		}
		return nil
	},
}

var prereleaseSwitchCmd = &cobra.Command{
	Use:   "switch <label>",
	Short: "Switch the current pre-release cycle to a new label",
	Long:  "Equivalent to exiting every package in the current cycle and re-entering under the new label.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl, err := loadController()
		if err != nil {
			fail(err)
			return nil
		}
		state, err := ctrl.Switch(args[0])
		if err != nil {
			fail(err)
			return nil
		}
		fmt.Printf("Switched pre-release to %q for: %v\n", state.Label, state.Packages)
		return nil
	},
}
