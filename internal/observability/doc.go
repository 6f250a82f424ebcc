// Package observability accumulates pattern observations in memory and
// derives distribution, trend and time-window summaries from them on demand.
// It also provides the JSON Lines (JSONL) event log used as the audit trail,
// threshold alerting over the confidence summaries, and Slack notification.
package observability
