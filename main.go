package main

import (
	"fmt"

	"github.com/zeu5/rl-dataset/cmd"
)

// main entry point to the dataset tool
func main() {
	rootCommand := cmd.RootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}
