package main

import "github.com/nextlevelbuilder/gatekeep/cmd"

func main() {
	cmd.Execute()
}
