// Package approval provides the completion gate for plan tasks.
//
// A plan task run by a team may only be marked complete after a reviewer
// approved it. Approvals live in a [Store]; [MarkerStore] keeps one marker
// file per approved task under a state directory:
//
//	<state_dir>/<team>/<task subject>.approved
//
// Both path components are passed through [SanitizeID], so hostile team
// names or subjects cannot escape the state directory.
//
// [Gate] evaluates TaskCompleted hook requests. Only teams with the
// configured prefix and only tasks whose subject looks like a plan task
// ("T1: ...", "T2 ...") are gated; worker-internal subtasks pass so that
// workers cannot deadlock on their own bookkeeping. The gate fails closed:
// a store error blocks.
package approval
