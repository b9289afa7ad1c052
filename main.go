package main

import (
	"mruput.io/infrastructure"
	"mruput.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
