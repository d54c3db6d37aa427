// Package productivity derives metrics from a user's goals, tasks and events:
// record normalization, date-window filtering, completion streaks, dashboard
// counters and deadline classification. Nothing here performs I/O; the
// reference instant always comes from the caller.
package productivity
