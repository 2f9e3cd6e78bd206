package filter

// Aggregate combines one or more RoutingConfigs, identified by their
// resource URI, into a per-path AggregatedPathRule: whitelists and
// blacklists are concatenated, tag-filter value sets are unioned, and each
// contributing config's URI is tracked per rule component. Configs are
// aggregated, never merged — a later config's whitelist entries add to,
// rather than replace, an earlier one's.
func Aggregate(configs map[string]RoutingConfig) map[string]AggregatedPathRule {
	out := make(map[string]AggregatedPathRule)
	for uri, cfg := range configs {
		for path, rule := range cfg.PathRules {
			agg, ok := out[path]
			if !ok {
				agg = AggregatedPathRule{TagFilters: make(map[string][]string)}
			}
			if len(rule.Whitelist) > 0 {
				agg.Whitelist = append(agg.Whitelist, rule.Whitelist...)
				agg.Sources.WhitelistFrom = append(agg.Sources.WhitelistFrom, uri)
			}
			if len(rule.Blacklist) > 0 {
				agg.Blacklist = append(agg.Blacklist, rule.Blacklist...)
				agg.Sources.BlacklistFrom = append(agg.Sources.BlacklistFrom, uri)
			}
			if len(rule.TagFilters) > 0 {
				unionTagFilters(agg.TagFilters, rule.TagFilters)
				agg.Sources.TagFiltersFrom = append(agg.Sources.TagFiltersFrom, uri)
			}
			if rule.Expression != "" {
				agg.Expression = rule.Expression
			}
			out[path] = agg
		}
	}
	return out
}

func unionTagFilters(dst map[string][]string, src map[string]TagFilterValue) {
	for tag, values := range src {
		existing := dst[tag]
		seen := make(map[string]bool, len(existing))
		for _, v := range existing {
			seen[v] = true
		}
		for _, v := range values {
			if !seen[v] {
				existing = append(existing, v)
				seen[v] = true
			}
		}
		dst[tag] = existing
	}
}
