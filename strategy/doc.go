// Package strategy provides partition strategies for room splits.
//
// A strategy decides which participants keep the original room and which
// move to the new room produced by a split. Strategies are pluggable via
// the types.PartitionStrategy interface:
//
//   - BalancedRandom: deterministic shuffled halving, the baseline policy.
//   - VibeAware: separates the two most vibe-distant members and groups
//     the rest around them; falls back to BalancedRandom for small rooms
//     or missing vibe data. This is the controller default.
package strategy
