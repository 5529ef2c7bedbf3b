package main

import "note-trainer/cmd"

func main() {
	cmd.Execute()
}
