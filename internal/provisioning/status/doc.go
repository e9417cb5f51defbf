// Package status aggregates the records of one cluster into a single
// Available condition and a printable report.
package status
