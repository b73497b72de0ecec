// Package models defines the core domain models for CrewLog.
//
// # Models
//
//   - User: a device-local identity (trust-on-first-use, no accounts)
//   - Member: a user's membership record inside one group
//   - WorkItem: a named task within a group that time is logged against
//   - WorkLog: an immutable record of time spent, authored by one member
//   - Group: the unit of storage; a self-contained shared workspace
//
// # Design Principles
//
//  1. **Group documents are self-contained**: members, tasks and logs are
//     embedded, so one document fetch renders a whole group. There is no
//     referential integrity across groups.
//  2. **Logs snapshot their author**: a WorkLog carries denormalized copies
//     of the task name and the author's display fields at log time, so later
//     profile edits never rewrite history.
//  3. **Everything from the store is untrusted**: documents only enter the
//     rest of the program through the normalizers in this package, which are
//     total and never fail. Downstream code does not null-check.
//
// Field names in the persisted JSON are the camelCase tags on the structs;
// they are the on-disk document layout and must stay stable.
package models
