package main

import "github.com/kebairia/rdsbackup/cmd"

func main() {
	cmd.Execute()
}
