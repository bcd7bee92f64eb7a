// Package match scores social compatibility.
//
// Two scoring surfaces live here and are intentionally distinct:
//
//   - Scorer compares two users via a weighted five-factor sum (interests,
//     vibe, activity, proximity, style/energy). Every factor is symmetric
//     in its arguments, so Score(a, b) == Score(b, a) holds exactly.
//   - RoomCompatibility compares two rooms via a coarser blend of topic
//     overlap, aggregate vibe, activity and centroid proximity. It feeds
//     merge candidate selection, not user placement.
package match
