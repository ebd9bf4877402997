package main

import "smellcheck/cmd"

func main() {
	cmd.Execute()
}
