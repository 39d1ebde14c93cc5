// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/dockhand/cmd/dockhand"

func main() {
	cmd.Execute()
}
