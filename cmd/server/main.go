package main

import "paysheet/internal/app/server"

func main() {
	server.Run()
}
