// Package credential models bearer credential pools and the providers that
// load them.
//
// This file implements group-to-pool routing. Groups are the caller-facing
// identifiers (for example region codes), while pools are the stored
// credential sets. Routing lets several groups share one pool.
//
// ROUTE TABLE FORMAT:
//
//	ind=IND;br=BR,US,SAC,NA
//
// reads as "pool ind serves IND, pool br serves BR, US, SAC and NA". Groups
// that are not routed use the default pool. The known group list drives the
// pool diagnostics endpoint and keeps its order stable.
package credential

import (
	"fmt"
	"sort"
	"strings"

	"github.com/concave-dev/fanout/internal/validate"
)

// Router maps groups to pool names. Several groups may share one pool (for
// example every Americas region), and unrouted groups use the default pool.
type Router struct {
	routes      map[string]string
	defaultPool string
	groups      []string
}

// ParseRoutes parses a route table of the form "pool=GROUP,GROUP;pool=GROUP".
// Group names are normalized; each group may be routed only once.
func ParseRoutes(raw string) (map[string]string, error) {
	routes := make(map[string]string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return routes, nil
	}

	for _, clause := range strings.Split(raw, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		pool, groups, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, fmt.Errorf("invalid route %q: expected pool=GROUP[,GROUP]", clause)
		}
		pool = strings.TrimSpace(pool)
		if err := validate.PoolName(pool); err != nil {
			return nil, fmt.Errorf("invalid route %q: %w", clause, err)
		}

		for _, group := range strings.Split(groups, ",") {
			group = NormalizeGroup(group)
			if group == "" {
				continue
			}
			if err := validate.GroupName(group); err != nil {
				return nil, fmt.Errorf("invalid route %q: %w", clause, err)
			}
			if existing, dup := routes[group]; dup {
				return nil, fmt.Errorf("group %s routed to both %s and %s", group, existing, pool)
			}
			routes[group] = pool
		}
	}
	return routes, nil
}

// ParseGroups parses a comma separated group list, normalizing and
// de-duplicating while keeping the first-seen order.
func ParseGroups(list string) ([]string, error) {
	seen := make(map[string]bool)
	var groups []string
	for _, group := range strings.Split(list, ",") {
		group = NormalizeGroup(group)
		if group == "" || seen[group] {
			continue
		}
		if err := validate.GroupName(group); err != nil {
			return nil, err
		}
		seen[group] = true
		groups = append(groups, group)
	}
	return groups, nil
}

// NewRouter builds a router. groups lists the groups reported by pool
// diagnostics; routed groups missing from it are appended in sorted order.
func NewRouter(routes map[string]string, defaultPool string, groups []string) (*Router, error) {
	if err := validate.PoolName(defaultPool); err != nil {
		return nil, fmt.Errorf("invalid default pool: %w", err)
	}

	r := &Router{
		routes:      make(map[string]string, len(routes)),
		defaultPool: defaultPool,
	}

	seen := make(map[string]bool)
	for _, group := range groups {
		group = NormalizeGroup(group)
		if group != "" && !seen[group] {
			seen[group] = true
			r.groups = append(r.groups, group)
		}
	}

	var extra []string
	for group, pool := range routes {
		group = NormalizeGroup(group)
		r.routes[group] = pool
		if !seen[group] {
			seen[group] = true
			extra = append(extra, group)
		}
	}
	sort.Strings(extra)
	r.groups = append(r.groups, extra...)

	return r, nil
}

// Pool returns the pool name serving group, or the default pool when the
// group has no route.
func (r *Router) Pool(group string) string {
	if pool, ok := r.routes[NormalizeGroup(group)]; ok {
		return pool
	}
	return r.defaultPool
}

// Groups returns a copy of the known groups in display order.
func (r *Router) Groups() []string {
	out := make([]string, len(r.groups))
	copy(out, r.groups)
	return out
}
