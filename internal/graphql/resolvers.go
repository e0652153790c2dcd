package graphql

import (
	"sort"

	"github.com/graphql-go/graphql"
)

// resolveSettings handles the settings query
func (s *Schema) resolveSettings(p graphql.ResolveParams) (interface{}, error) {
	s.logger.Debug("resolving settings query")
	return map[string]interface{}{
		"debug":        s.settings.Debug,
		"timeZone":     s.settings.TimeZone,
		"allowedHosts": s.settings.AllowedHosts,
	}, nil
}

// resolveDatabases lists databases in alias order, optionally filtered
func (s *Schema) resolveDatabases(p graphql.ResolveParams) (interface{}, error) {
	alias, _ := p.Args["alias"].(string)

	var entries []databaseEntry
	for _, a := range s.settings.Aliases() {
		if alias != "" && a != alias {
			continue
		}
		entries = append(entries, databaseEntry{alias: a, db: s.settings.Databases[a]})
	}
	return entries, nil
}

func resolveOptions(p graphql.ResolveParams) (interface{}, error) {
	entry, ok := p.Source.(databaseEntry)
	if !ok {
		return nil, nil
	}

	keys := make([]string, 0, len(entry.db.Options))
	for k := range entry.db.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	options := make([]map[string]interface{}, 0, len(keys))
	for _, k := range keys {
		options = append(options, map[string]interface{}{"key": k, "value": entry.db.Options[k]})
	}
	return options, nil
}
