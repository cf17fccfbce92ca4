package main

import (
	"os"

	"github.com/dev-bikash-roy/briloai/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
