package main

import "github.com/scene-hunter/scenehunter/internal/cli"

func main() {
	cli.Execute()
}
