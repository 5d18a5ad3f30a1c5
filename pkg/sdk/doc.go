// Package facetdex is an in-process client for the facetdex catalog search
// engine. It stores works in Redis, Valkey or an embedded Badger database
// and answers browse and fuzzy search requests with flat and hierarchical
// facets.
//
//	client, _ := facetdex.New(ctx, facetdex.WithBadgerInMemory())
//	defer client.Close()
//
//	_ = client.WorkTypes().Save(ctx, facetdex.WorkType{ID: 4, Label: "Prosa"})
//	_ = client.Works().Save(ctx, facetdex.Work{
//	    ID:         "1",
//	    Attributes: map[string]string{"title": "Der Sommer"},
//	    Lists:      map[string][]string{"language": {"Deutsch"}},
//	    Categories: []facetdex.WorkType{{ID: 4, Label: "Prosa"}},
//	})
//
//	res, _ := client.Works().Search(ctx, facetdex.SearchParams{
//	    Query:  facetdex.String("Sommer"),
//	    Facets: map[string][]string{"language": {"deutsch"}},
//	})
package facetdex
