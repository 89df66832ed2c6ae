// Package mapreduce runs a single-process map/shuffle/reduce job over a
// stream of input lines.
//
// Mappers pull lines from a shared channel, so no stage logic may
// depend on which worker sees which line or in what order. Each emitted
// key/value pair is routed to a reduce partition by hashing the key;
// closing the shuffle channels once every mapper has finished is the
// barrier that guarantees a reducer folds a key only after all
// partitions have contributed.
//
// Reducers buffer shuffled values in a Storage bucket before folding,
// so a shuffle larger than memory can spill to disk (storage/bolt)
// instead of growing an in-process map.
package mapreduce
