// Package dedupe links records that describe the same show and merges
// each group into one canonical record.
//
// Detection works on one calendar day at a time. Two records are the same
// show when their venues are similar and either their headliners are
// similar or a strict majority of the comparable secondary attributes
// (time, prices, age, supporting acts) agree. Pairwise links are closed
// transitively with a DisjointSet.
//
// Merging starts from the most detailed record in a cluster and folds in
// acts, prices, flags, genre tags and non-default time and age from the
// others.
package dedupe
