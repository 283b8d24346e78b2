// Package plan is the plan-graph engine behind picopala.
//
// A plan is a markdown document in which every task is a level-3 heading
// followed by bullet fields:
//
//	### T2: Build the API
//	- **depends_on**: [T1]
//	- **location**: services/api
//	- **description**: Implement the endpoints
//	- **acceptance_criteria**: All endpoints return 200
//	- **validation**: go test ./...
//	- **status**: pending
//
// The package turns such a document into [Task] records ([Parse], [Load]),
// checks them ([Validate]), partitions the non-completed tasks into waves of
// mutually independent work ([ComputeWaves]) and summarizes progress
// ([Summarize]). [Analyze] runs all of them in the order callers must respect:
// waves are only computed for a plan without validation issues.
//
// Everything here is a pure function over an in-memory snapshot. Nothing is
// cached between calls; each invocation re-reads the document.
package plan
