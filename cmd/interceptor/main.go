// Command interceptor is the governance mediator's entrypoint.
package main

import "github.com/mcpgov/interceptor/cmd/interceptor/cmd"

func main() {
	cmd.Execute()
}
