/*
Copyright © 2025 the repolicy authors
*/
package main

import "github.com/repolicyhq/repolicy/cmd"

func main() {
	cmd.Execute()
}
