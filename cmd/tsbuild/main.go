// Command tsbuild runs the TypeScript tasks of the project in the working
// directory with goyek.
//
//	go run ./cmd/tsbuild ts-compile
package main

import (
	"fmt"
	"os"

	"github.com/fredrikaverpil/tswatch"
	"github.com/fredrikaverpil/tswatch/config"
	"github.com/fredrikaverpil/tswatch/internal/app"
	"github.com/fredrikaverpil/tswatch/tasks"
	"github.com/goyek/goyek/v3"
	"github.com/goyek/x/boot"
)

func main() {
	cfg, err := config.Load(os.Getenv("TSWATCH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsbuild: %v\n", err)
		os.Exit(1)
	}
	g, err := app.NewGuard(cfg, tswatch.StdOutput(), app.Colored())
	if err != nil {
		fmt.Fprintf(os.Stderr, "tsbuild: %v\n", err)
		os.Exit(1)
	}

	t := tasks.New(g)
	goyek.SetDefault(t.All)
	boot.Main()
}
