// Command availabilityd hosts the availability policy engine as a
// standalone CLI: evaluate a subject's availability, validate a rule set,
// and report version information.
package main

import "github.com/romegasoftware/availability/cmd/availabilityd/cmd"

func main() {
	cmd.Execute()
}
