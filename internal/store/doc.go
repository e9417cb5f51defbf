// Package store persists the records of each cluster id so a restarted
// engine resumes from its last observation. Records are partitioned by
// cluster id; no operation touches more than one partition.
package store
