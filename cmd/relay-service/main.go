package main

import (
	"os"

	"github.com/coginfy/relay/relayservice"
)

func main() {
	if err := relayservice.Run(); err != nil {
		os.Exit(1)
	}
}
