package main

import "github.com/tradeboard/rewards-core/cmd"

func main() {
	cmd.Execute()
}
