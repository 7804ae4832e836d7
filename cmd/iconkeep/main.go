// Command iconkeep backs up and restores custom macOS app icons.
package main

import (
	"os"

	"github.com/jmgilman/iconkeep/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
