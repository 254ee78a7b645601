package main

import "github.com/araufdev/business-management/cmd"

func main() {
	cmd.Execute()
}
