package main

import (
	"log"

	"github.com/samuelfneumann/acrobot-a2c/cmd"
)

func main() {
	if err := cmd.RootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
