// Command timesheet records billable time against client project and task
// codes, and backs it up to a sync server.
package main

import (
	"os"

	"github.com/manav03panchal/timesheet/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
