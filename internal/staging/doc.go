// Package staging stores per-partition segments while a download runs.
//
// A segment is a single blob keyed by the decimal partition index under the
// area's prefix:
//
//	{prefix}0
//	{prefix}1
//	...
//
// Each key is written by exactly one worker through one Writer, so no
// locking is needed. A blob becomes visible only when its Writer is closed;
// Abort discards everything written so far.
//
// The default area is a local directory (gocloud.dev/blob/fileblob). Any
// bucket URL understood by gocloud.dev works as well, e.g. mem:// in tests
// or s3:// and gs:// for remote staging.
package staging
