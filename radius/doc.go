// Package radius computes the adaptive ("elastic") discovery radius.
//
// The radius shrinks exponentially as more active users are found nearby
// and relaxes toward the maximum when an area is quiet. Discovery expands
// the radius incrementally rather than jumping straight to the target, and
// stops early when additional area stops yielding additional density.
package radius
