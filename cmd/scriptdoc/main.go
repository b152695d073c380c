package main

import "github.com/mvp-joe/scriptdoc/internal/cli"

func main() {
	cli.Execute()
}
