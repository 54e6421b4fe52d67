package main

import "github.com/sensigrep/sensigrep/cmd/sensigrep"

func main() { sensigrep.Execute() }
