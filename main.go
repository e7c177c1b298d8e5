package main

import "github.com/equidadeplus/equidade_backend/cmd"

func main() {
	cmd.Execute()
}
