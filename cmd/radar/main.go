package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Farouk858/product-radar/cmd/radar/cmd"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
		os.Exit(1)
	}

	cmd.Execute()
}
