package main

import "github.com/cantis/FlaskFactor2/internal/cli"

func main() {
	cli.Execute()
}
