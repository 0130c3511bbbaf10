package main

import (
	"os"

	"github.com/borntodev-academy/go-auth-api/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
