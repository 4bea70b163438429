// SPDX-License-Identifier: MPL-2.0

// Command envflat flattens a configuration document into shell variable
// assignments.
package main

import cmd "github.com/envflat/envflat/cmd/envflat"

func main() {
	cmd.Execute()
}
