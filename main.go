package main

import "voiceguard/cmd"

func main() {
	cmd.Execute()
}
