// Command socialgood serves user-record validation, registration and
// password checks over HTTP.
package main

import (
	"github.com/patric-chuzhbe/socialgood/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		panic(err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		panic(err)
	}
}
