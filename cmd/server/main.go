package main

import (
	"go.uber.org/fx"

	"github.com/project-tktt/vacancy-hub/internal/app"
)

// The server runs the HTTP API, the background worker and the scheduler in
// one process
func main() {
	fx.New(
		app.Module,
		fx.Invoke(
			app.RunHTTP,
			app.RunWorker,
			app.RunScheduler,
		),
	).Run()
}
