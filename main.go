package main

import "github.com/FlyingWhaleisME/where-to-next-sub001/internal/app"

func main() {
	app.Run()
}
