// Package pipeline wires Layers 1-8 into running goroutines: one worker per
// sensor carries a scan through background subtraction, projection,
// clustering, and screen mapping; one worker per screen fuses candidates
// from every sensor that can see it, runs the tracker, and renders its
// confirmed touches to TUIO through the single shared emitter. It is the only package that
// imports every other l1scan..l8tuio package at once.
package pipeline
