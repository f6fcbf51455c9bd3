package main

import "clementus360/focusflow/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
