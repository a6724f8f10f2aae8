package main

import (
	"os"

	"jlmgo/internal/driver"
)

func main() {
	os.Exit(driver.RunMain(os.Args[1:]))
}
