package main

import "github.com/eponymouse/columnal-sub000/cmd/colx/commands"

func main() {
	commands.Execute()
}
