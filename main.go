package main

import "affiliate-sync/cmd"

func main() {
	cmd.Execute()
}
