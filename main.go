package main

import "photo-journal-backend/cmd"

func main() {
	cmd.Run()
}
