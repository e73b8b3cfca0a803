// Package watchersvc periodically recomputes every profile's counter and
// records stage changes and newly reached anniversary milestones in the
// profile's activity feed.
package watchersvc
