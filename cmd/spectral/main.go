// Command spectral analyzes WAV files with the real-time spectral analyzer.
//
// Usage:
//
//	spectral analyze [flags] <file.wav>
//	spectral bars [flags] <file.wav>
//	spectral windows [flags] [window-name ...]
//	spectral config init [path]
//
// Examples:
//
//	spectral analyze -n 4096 --scale db -o json take1.wav
//	spectral bars --at 1.5s --bands 32 take1.wav
//	spectral windows --periodic hann blackman
//	SPECTRAL_WINDOW=hamming spectral analyze take1.wav
package main

import (
	"os"

	"github.com/cwbudde/algo-spectral/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
