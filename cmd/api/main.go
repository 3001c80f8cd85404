package main

import (
	"go.uber.org/fx"

	"github.com/streetsupply/streetsupply/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
