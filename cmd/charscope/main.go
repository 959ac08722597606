package main

import (
	"os"

	"github.com/golang/glog"
)

func main() {
	err := Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
