/*
Package turtleshot runs turtle-graphics programs headlessly and saves what
they drew.

A run executes a program once, tracks the region the pen touched, crops the
canvas to that region plus a margin, and writes the result next to the
program's text output and a JSON document of execution details.

# Artifacts

For an output prefix P, the split layout writes P.txt (text output), P.png
(cropped raster) and P.json (details). A failed run also gets P.err holding
the raw error text. The combined layout writes a single JSON document at P:

	{"image": "data:image/png;base64,...", "text": "...", "details": {...}}

# Failure handling

There is one error boundary per run. The first failure, whether the program
failed or persisting the artifacts failed, is recorded and the artifacts are
written again with the error attached; the run then ends with status 1. A
failure while doing that is fatal and ends with status 2.

# Usage

	p := turtleshot.New(turtleshot.WithLogger(logger))
	res, err := p.Execute(ctx, turtleshot.Request{
		Source:       "repeat 4 [fd 100 rt 90]",
		OutputPrefix: "out/square",
	})
	if err != nil {
		os.Exit(res.Status)
	}
*/
package turtleshot
