package main

import (
	"checky/internal/cmd"
)

func main() {
	cmd.Run()
}
