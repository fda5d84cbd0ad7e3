package config

import (
	"fmt"

	"github.com/sampo-dev/sampo/internal/sampoerr"
)

// Validate checks the group-membership and structural invariants a loaded
// Config must satisfy before the planner can trust it: a package may
// appear in at most one of fixed/linked, and no group may be empty.
//
// It does not check that group members resolve to known workspace
// packages — that requires the Workspace and is performed by the planner
// per the "unknown PackageIds in groups" error condition.
func (c *Config) Validate() error {
	seen := make(map[string]string) // member -> group kind it was first seen in

	check := func(groups [][]string, kind string) error {
		for _, group := range groups {
			if len(group) == 0 {
				return sampoerr.NewInvalidConfigError("packages."+kind, "group must not be empty", nil)
			}
			for _, member := range group {
				if prevKind, ok := seen[member]; ok {
					return sampoerr.NewInvalidConfigError(
						"packages."+kind,
						fmt.Sprintf("package %q appears in both %s and %s groups", member, prevKind, kind),
						nil,
					)
				}
				seen[member] = kind
			}
		}
		return nil
	}

	if err := check(c.Packages.Fixed, "fixed"); err != nil {
		return err
	}
	if err := check(c.Packages.Linked, "linked"); err != nil {
		return err
	}

	return nil
}
