package main

import "github.com/vqhuy-dev/webaudit-cli/cmd"

// execCmd is indirected for tests.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
