package main

import "github.com/mselser95/depth-arb/cmd"

func main() {
	cmd.Execute()
}
