package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/iasql/cli/internal/api"
	"github.com/iasql/cli/internal/ui"
)

// printPlan writes one table per affected table and change kind.
func printPlan(w io.Writer, plan *api.Plan) {
	if plan.Empty() {
		ui.Warn(w, "No difference detected between hosted db and cloud account")
		return
	}
	printPlanSegment(w, plan.ToCreate, ui.Green("create"))
	printPlanSegment(w, plan.ToUpdate, ui.Yellow("update"))
	printPlanSegment(w, plan.ToReplace, ui.Magenta("replace"))
	printPlanSegment(w, plan.ToDelete, ui.Red("delete"))
}

func printPlanSegment(w io.Writer, segment map[string]api.PlanMeta, mode string) {
	for _, table := range slices.Sorted(maps.Keys(segment)) {
		meta := segment[table]
		noun := "records"
		if len(meta.Records) == 1 {
			noun = "record"
		}
		_, _ = fmt.Fprintf(w, "%s has %s %s to %s\n",
			ui.Bold(table), ui.Bold(fmt.Sprint(len(meta.Records))), ui.Bold(noun), mode)
		ui.WriteTable(w, meta.Columns, meta.Records)
	}
}
