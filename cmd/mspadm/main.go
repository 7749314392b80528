package main

import "github.com/msplatform/mspadm/internal/cli"

func main() {
	cli.Execute()
}
