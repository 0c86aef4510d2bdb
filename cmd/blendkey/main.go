// blendkey authors facial blend-shape keyframes for skinned meshes.
package main

import (
	"os"

	"github.com/hupe1980/blendkey/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
