package main

import "github.com/foodgram/backend/internal/cmd/foodgramctl"

func main() {
	foodgramctl.Execute()
}
