package main

import "github.com/KaramelBytes/mortalisys/cmd"

func main() {
	cmd.Execute()
}
