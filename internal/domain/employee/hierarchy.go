package employee

import (
	"context"
	"fmt"
)

const maxReportingDepth = 1000

// ManagerLookup returns the manager of employeeID, or nil at the top.
type ManagerLookup func(ctx context.Context, employeeID string) (*string, error)

// CheckReportingLine verifies that making proposedManagerID the manager of
// employeeID keeps the reporting graph acyclic.
func CheckReportingLine(ctx context.Context, employeeID, proposedManagerID string, lookup ManagerLookup) error {
	if proposedManagerID == employeeID {
		return ErrSelfManager
	}

	visited := map[string]struct{}{proposedManagerID: {}}
	current := proposedManagerID
	for depth := 0; depth < maxReportingDepth; depth++ {
		next, err := lookup(ctx, current)
		if err != nil {
			return fmt.Errorf("failed to walk reporting line at %s: %w", current, err)
		}
		if next == nil {
			return nil
		}
		if *next == employeeID {
			return ErrReportingCycle
		}
		if _, seen := visited[*next]; seen {
			// pre-existing loop above the employee
			return ErrReportingCycle
		}
		visited[*next] = struct{}{}
		current = *next
	}
	return ErrReportingCycle
}
