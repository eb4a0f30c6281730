package main

import "equipment-tracker/cmd"

func main() {
	cmd.Execute()
}
