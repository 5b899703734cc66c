// Package tasks provides goyek tasks that compile, verify and clean the
// TypeScript files of a project in one shot.
package tasks

import (
	"github.com/fredrikaverpil/tswatch"
	"github.com/goyek/goyek/v3"
)

// Tasks holds the goyek tasks for a Guard.
type Tasks struct {
	// Compile compiles every watched file.
	Compile *goyek.DefinedTask

	// Verify compiles every watched file without writing artifacts.
	Verify *goyek.DefinedTask

	// Clean removes the artifacts of every watched file.
	Clean *goyek.DefinedTask

	// All runs verify, then compile.
	All *goyek.DefinedTask
}

// New defines the tasks for g.
func New(g *tswatch.Guard) *Tasks {
	t := &Tasks{}

	t.Compile = goyek.Define(goyek.Task{
		Name:  "ts-compile",
		Usage: "compile all watched TypeScript files",
		Action: func(a *goyek.A) {
			if err := g.RunAll(a.Context()); err != nil {
				a.Fatal(err)
			}
		},
	})

	verify := g.WithOptions(func(o *tswatch.Options) { o.VerifyOnly = true })
	t.Verify = goyek.Define(goyek.Task{
		Name:  "ts-verify",
		Usage: "type-check all watched TypeScript files without writing output",
		Action: func(a *goyek.A) {
			if err := verify.RunAll(a.Context()); err != nil {
				a.Fatal(err)
			}
		},
	})

	t.Clean = goyek.Define(goyek.Task{
		Name:  "ts-clean",
		Usage: "remove generated JavaScript files and source maps",
		Action: func(a *goyek.A) {
			if err := g.CleanAll(a.Context()); err != nil {
				a.Fatal(err)
			}
		},
	})

	t.All = goyek.Define(goyek.Task{
		Name:  "ts-all",
		Usage: "run all TypeScript tasks (verify, compile)",
		Deps:  goyek.Deps{t.Verify, t.Compile},
	})

	return t
}
