package main

import "github.com/zhang-3000/meituan/cmd"

func main() {
	cmd.Execute()
}
