package main

import (
	"os"

	"github.com/Apurer/go-gin-carrier-checkout/internal/app/carrierctl"
)

func main() {
	if err := carrierctl.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
