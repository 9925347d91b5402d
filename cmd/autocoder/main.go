// Command autocoder turns generation backend output into verified filesystem
// mutations: it runs the self-improvement cycle and the missing-artifact
// healer against a project workspace.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
