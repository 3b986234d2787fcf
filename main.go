package main

import "github.com/tareas-web/appserver/cmd"

func main() {
	cmd.Execute()
}
