package main

import "github.com/hungl6844/xcrab/cmd/xcrab-msg/commands"

func main() {
	commands.Execute()
}
