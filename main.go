package main

import "github.com/KaramelBytes/datadeck/cmd"

func main() {
	cmd.Execute()
}
