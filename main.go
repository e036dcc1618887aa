package main

import "thoreinstein.com/floyd/cmd"

func main() {
	cmd.Execute()
}
