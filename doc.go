// Package flashkv adapts a log-structured key-value engine to raw NOR
// flash. The engine sees three operations, read, write and erase, bounded
// to a fixed Region of the device. The adapter translates them into the
// part's page-program and sector-erase commands, waits out each command's
// busy window, and reports hardware results as-is.
//
// NOR physics are the caller's contract: programming can only clear bits,
// so a range must be erased before it is rewritten. The adapter never
// erases implicitly and never retries.
package flashkv
