// Command alarm-chat runs the network operations chat widget.
package main

import "github.com/oshokin/alarm-chat/cmd/alarm-chat/cmd"

func main() {
	cmd.Execute()
}
