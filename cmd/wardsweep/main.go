package main

import "github.com/TrevorS/wardsweep/cmd/handlers"

func main() {
	handlers.Execute()
}
