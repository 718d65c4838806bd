package main

import "codex-manager/cmd"

func main() {
	cmd.Execute()
}
