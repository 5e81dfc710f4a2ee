package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const maxSuggestions = 3

// SelectTags resolves the configured tag selection against the catalog:
// every favourite tag when favourite is true, plus each explicitly named
// tag. A name the catalog does not know produces a warning (with
// nearest-name suggestions), never an error. The result is deduplicated
// by ID and ordered by name so downstream planning is deterministic.
func SelectTags(ctx context.Context, c Client, favourite bool, names []string) ([]Tag, []string, error) {
	var selected []Tag
	var warnings []string
	seen := make(map[string]bool)

	var all []Tag
	if favourite || len(names) > 0 {
		var err error
		all, err = c.FindTags(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	if favourite {
		for _, t := range all {
			if t.Favorite && !seen[t.ID] {
				seen[t.ID] = true
				selected = append(selected, t)
			}
		}
	}

	for _, name := range names {
		tag, err := c.TagByName(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if tag == nil {
			warnings = append(warnings, notFoundWarning("tag", name, tagNames(all)))
			continue
		}
		if !seen[tag.ID] {
			seen[tag.ID] = true
			selected = append(selected, *tag)
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	return selected, warnings, nil
}

// SelectPerformers is the performer counterpart of SelectTags.
func SelectPerformers(ctx context.Context, c Client, favourite bool, names []string) ([]Performer, []string, error) {
	var selected []Performer
	var warnings []string
	seen := make(map[string]bool)

	var all []Performer
	if favourite || len(names) > 0 {
		var err error
		all, err = c.FindPerformers(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	if favourite {
		for _, p := range all {
			if p.Favorite && !seen[p.ID] {
				seen[p.ID] = true
				selected = append(selected, p)
			}
		}
	}

	for _, name := range names {
		performer, err := c.PerformerByName(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if performer == nil {
			warnings = append(warnings, notFoundWarning("performer", name, performerNames(all)))
			continue
		}
		if !seen[performer.ID] {
			seen[performer.ID] = true
			selected = append(selected, *performer)
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Name < selected[j].Name })
	return selected, warnings, nil
}

func notFoundWarning(kind, name string, candidates []string) string {
	msg := fmt.Sprintf("%s %q not found in catalog", kind, name)
	suggestions := suggest(name, candidates)
	if len(suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
	}
	return msg
}

// suggest returns up to maxSuggestions catalog names nearest to the
// unresolved one, best first.
func suggest(name string, candidates []string) []string {
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	sort.Sort(ranks)
	var out []string
	for _, r := range ranks {
		out = append(out, fmt.Sprintf("%q", r.Target))
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}

func tagNames(tags []Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func performerNames(performers []Performer) []string {
	names := make([]string, len(performers))
	for i, p := range performers {
		names[i] = p.Name
	}
	return names
}
