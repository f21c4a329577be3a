package main

import "mdr-travel/go_backend/internal/app"

func main() {
	app.Run()
}
