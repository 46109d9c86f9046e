package main

import (
	"github.com/linguapersonal/backend/app"
)

func main() {
	app.New(nil).Run()
}
