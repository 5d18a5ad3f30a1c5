// Command facetdex-cli searches and loads a catalog directly through the SDK,
// without the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/version"
	facetdex "github.com/kailas-cloud/facetdex/pkg/sdk"
)

// StorageConfig selects the catalog store.
type StorageConfig struct {
	Driver    string `help:"Storage driver (valkey, redis, badger)" default:"badger" enum:"valkey,redis,badger"`
	Addr      string `help:"Valkey/Redis address" default:"localhost:6379"`
	Password  string `help:"Valkey/Redis password" env:"FACETDEX_DB_PASSWORD"`
	DataDir   string `help:"Badger data directory" default:"./data"`
	InMemory  bool   `help:"Use an in-memory Badger database"`
	KeyPrefix string `help:"Key prefix for catalog keys" default:"facetdex:"`
	LogLevel  string `help:"Log level" default:"warn"`
}

// CLI is the command tree.
type CLI struct {
	StorageConfig
	Search  SearchCmd  `cmd:"" help:"Browse or fuzzy-search works."`
	Import  ImportCmd  `cmd:"" help:"Import works and work types from a JSON file."`
	Ping    PingCmd    `cmd:"" help:"Check storage connectivity and hierarchy health."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// SearchCmd runs one search request and prints the page and facets.
type SearchCmd struct {
	Query     string            `arg:"" optional:"" help:"Search text; omit to browse in title order"`
	Facet     map[string]string `help:"Facet filter as name=value; values of one facet are comma separated"`
	StartYear int               `help:"Keep works active in or after this year (0 for no bound)"`
	EndYear   int               `help:"Keep works active in or before this year (0 for no bound)"`
	Limit     int               `help:"Page size" default:"20"`
	Offset    int               `help:"Page offset" default:"0"`
	Threshold float64           `help:"Minimum similarity score (0..1); negative keeps the configured default" default:"-1"`
	JSON      bool              `help:"Print the raw result as JSON"`
}

// ImportCmd loads a catalog dump.
type ImportCmd struct {
	File string `arg:"" help:"JSON file with work_types and works" type:"existingfile"`
}

// PingCmd checks the store.
type PingCmd struct{}

// VersionCmd prints build information.
type VersionCmd struct{}

type catalogFile struct {
	WorkTypes []workTypeJSON `json:"work_types"`
	Works     []workJSON     `json:"works"`
}

type workTypeJSON struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	ParentID int64  `json:"parent_id"`
}

type workJSON struct {
	ID         string              `json:"id"`
	Attributes map[string]string   `json:"attributes"`
	Lists      map[string][]string `json:"lists"`
	Numerics   map[string]float64  `json:"numerics"`
	WorkTypes  []int64             `json:"work_types"`
}

func (s *StorageConfig) open(ctx context.Context) (*facetdex.Client, error) {
	logger, err := logpkg.NewLogger(logpkg.EnvLocal, s.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	opts := []facetdex.Option{
		facetdex.WithKeyPrefix(s.KeyPrefix),
		facetdex.WithLogger(logger),
		facetdex.WithReadinessTimeout(5 * time.Second),
	}
	switch s.Driver {
	case "valkey":
		opts = append(opts, facetdex.WithValkey(s.Addr, s.Password))
	case "redis":
		opts = append(opts, facetdex.WithRedis(s.Addr, s.Password))
	default:
		if s.InMemory {
			opts = append(opts, facetdex.WithBadgerInMemory())
		} else {
			opts = append(opts, facetdex.WithBadger(s.DataDir))
		}
	}

	client, err := facetdex.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return client, nil
}

// Run executes the search.
func (c *SearchCmd) Run(cli *CLI) error {
	ctx := context.Background()
	client, err := cli.open(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	params := facetdex.SearchParams{
		Facets: splitFacets(c.Facet),
		Limit:  c.Limit,
		Offset: c.Offset,
	}
	if c.Query != "" {
		params.Query = facetdex.String(c.Query)
	}
	if c.StartYear != 0 {
		params.StartYear = facetdex.Int(c.StartYear)
	}
	if c.EndYear != 0 {
		params.EndYear = facetdex.Int(c.EndYear)
	}
	if c.Threshold >= 0 {
		params.Threshold = facetdex.Float(c.Threshold)
	}

	res, err := client.Works().Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res) //nolint:wrapcheck // stdout
	}
	printResult(os.Stdout, &res)
	return nil
}

// Run imports work types first so works can reference them.
func (c *ImportCmd) Run(cli *CLI) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}
	var dump catalogFile
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parse %s: %w", c.File, err)
	}

	ctx := context.Background()
	client, err := cli.open(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	types := make(map[int64]facetdex.WorkType, len(dump.WorkTypes))
	list := make([]facetdex.WorkType, 0, len(dump.WorkTypes))
	for _, t := range dump.WorkTypes {
		wt := facetdex.WorkType{ID: t.ID, Label: t.Label, ParentID: t.ParentID}
		types[t.ID] = wt
		list = append(list, wt)
	}
	if err := client.WorkTypes().Save(ctx, list...); err != nil {
		return fmt.Errorf("save work types: %w", err)
	}

	works := make([]facetdex.Work, 0, len(dump.Works))
	for _, w := range dump.Works {
		work := facetdex.Work{
			ID:         w.ID,
			Attributes: w.Attributes,
			Lists:      w.Lists,
			Numerics:   w.Numerics,
		}
		for _, id := range w.WorkTypes {
			t, ok := types[id]
			if !ok {
				return fmt.Errorf("work %s: unknown work type %d", w.ID, id)
			}
			work.Categories = append(work.Categories, t)
		}
		works = append(works, work)
	}
	if err := client.Works().Save(ctx, works...); err != nil {
		return fmt.Errorf("save works: %w", err)
	}

	if err := client.WorkTypes().Check(ctx); err != nil {
		return fmt.Errorf("imported hierarchy is malformed: %w", err)
	}
	fmt.Printf("imported %d work types, %d works\n", len(list), len(works))
	return nil
}

// Run pings the store and reports the health checks.
func (c *PingCmd) Run(cli *CLI) error {
	ctx := context.Background()
	client, err := cli.open(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	h := client.Health(ctx)
	for _, name := range h.Components() {
		fmt.Printf("%-10s %s\n", name, h.Checks[name])
	}
	fmt.Printf("status     %s\n", h.Status)
	if !h.OK() {
		return errors.New("catalog is not healthy")
	}
	return nil
}

// Run prints the version.
func (c *VersionCmd) Run() error {
	fmt.Println(version.String())
	return nil
}

func splitFacets(in map[string]string) map[string][]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string][]string, len(in))
	for name, raw := range in {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out[name] = append(out[name], v)
			}
		}
	}
	return out
}

func printResult(w io.Writer, res *facetdex.SearchResult) {
	fmt.Fprintf(w, "%d matches (offset %d, limit %d)\n", res.Count, res.Offset, res.Limit)
	for _, h := range res.Hits {
		title := h.Attributes["title"]
		if h.Score != nil {
			fmt.Fprintf(w, "  %-8s %.3f  %s\n", h.ID, *h.Score, title)
		} else {
			fmt.Fprintf(w, "  %-8s %s\n", h.ID, title)
		}
	}

	names := make([]string, 0, len(res.Facets))
	for name := range res.Facets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "\n%s:\n", name)
		for _, v := range res.Facets[name] {
			fmt.Fprintf(w, "  %-24s %d\n", v.Key, v.Count)
		}
	}
	if res.HierarchyName != "" {
		fmt.Fprintf(w, "\n%s:\n", res.HierarchyName)
		printNodes(w, res.Hierarchy, 1)
	}
}

func printNodes(w io.Writer, nodes []facetdex.FacetNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.Label, n.Count)
		printNodes(w, n.Children, depth+1)
	}
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("facetdex-cli"),
		kong.Description("Search and load a facetdex catalog"),
		kong.UsageOnError(),
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
