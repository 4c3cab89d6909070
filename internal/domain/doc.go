// Package domain holds the volunteer matching rules: events, jobs and
// participations, the participation state machine, capacity accounting,
// authorization decisions and credit bookkeeping. Nothing here performs I/O;
// callers load state, ask the domain, then persist the outcome.
package domain
