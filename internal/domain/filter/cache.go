package filter

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// RuleHash hashes an AggregatedPathRule deterministically, so filter can
// skip recomputing a session's filter:tool_registry on a tools/list
// request when the matching rule hasn't changed since last time.
// Grounded on internal/service/policy_service.go's computeCacheKey: sort
// anything order-sensitive, write a separator byte between fields.
func RuleHash(rule AggregatedPathRule) uint64 {
	h := xxhash.New()

	writeSorted(h, rule.Whitelist)
	writeSorted(h, rule.Blacklist)

	tags := make([]string, 0, len(rule.TagFilters))
	for tag := range rule.TagFilters {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		_, _ = h.WriteString(tag)
		_, _ = h.Write([]byte{0})
		writeSorted(h, rule.TagFilters[tag])
	}

	_, _ = h.WriteString(rule.Expression)
	_, _ = h.Write([]byte{0})

	return h.Sum64()
}

// namesHash hashes a downstream tool name list, order-independent, so it
// can be combined with RuleHash into a single cache key: the filtered
// registry for a session only needs recomputing when either the matching
// rule or the downstream tool set has changed.
func namesHash(names []string) uint64 {
	h := xxhash.New()
	writeSorted(h, names)
	return h.Sum64()
}

func writeSorted(h *xxhash.Digest, values []string) {
	sorted := make([]string, len(values))
	copy(sorted, values)
	sort.Strings(sorted)
	_, _ = h.WriteString(strings.Join(sorted, ","))
	_, _ = h.Write([]byte{0})
}
