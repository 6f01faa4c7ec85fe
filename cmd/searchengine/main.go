// Command searchengine is the crawler/search-engine binary: it runs a
// one-off crawl session, serves the HTTP search API, or runs job-queue
// workers, depending on the subcommand.
package main

import (
	cmd "github.com/rohmanhakim/search-engine-core/internal/cli"
)

func main() {
	cmd.Execute()
}
