package main

import (
	"github.com/indicesp/indicesp/cmd"
)

func main() {
	cmd.Execute()
}
