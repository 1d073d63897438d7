// Command planar inspects and transforms serialized logical plans without
// executing them.
package main

import "os"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
