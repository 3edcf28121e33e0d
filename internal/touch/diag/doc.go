// Package diag renders offline HTML charts from a recorded session: a
// sensor's learned background profile and a scatter of the foreground
// clusters it produced, using go-echarts the way a quick operational
// dashboard would rather than a static plotting library, since the output
// is meant to be opened in a browser.
package diag
