/*
Package domain contains the core models of the headless turtle runner.

It defines the geometry used to track what a run actually drew, the metadata
collected about one execution, and the set of artifacts a run produces. This
package is kept pure and free of I/O so both the harness and the finalizer can
share it.

# Key Entities

  - Point: a pair of real coordinates in either turtle or image space.
  - Viewport: the incremental bounding box of everything drawn during a run.
  - ExecutionDetails: timing, counters, bounding box and error of one run.
  - OutputSet: artifact paths derived from a single output prefix.
  - RunRecord: what a RunLedger persists about a finished run.

# Coordinate Spaces

Turtle space has its origin at the canvas center with y growing upward.
Image space has its origin at the top-left corner with y growing downward.
ToImageSpace converts a point from the former to the latter.
*/
package domain
