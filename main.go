package main

import "github.com/darmiel/chatsts/cmd"

func main() {
	cmd.Execute()
}
