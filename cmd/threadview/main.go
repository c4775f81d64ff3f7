package main

import "github.com/lexcodex/threadview/app/cmd"

func main() {
	cmd.Execute()
}
