package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dd0wney/cluso-takeoff/pkg/audit"
	"github.com/dd0wney/cluso-takeoff/pkg/config"
	"github.com/dd0wney/cluso-takeoff/pkg/encryption"
	"github.com/dd0wney/cluso-takeoff/pkg/grouping"
	"github.com/dd0wney/cluso-takeoff/pkg/identity"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/metrics"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
	"github.com/dd0wney/cluso-takeoff/pkg/scan"
	"github.com/dd0wney/cluso-takeoff/pkg/validation"
)

type cliOptions struct {
	ModelPath  string
	ConfigPath string
	StatePath  string
	Epsilon    float64
	Cap        int
}

func parseFlags(name string, args []string) *cliOptions {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	opts := &cliOptions{}

	fs.StringVar(&opts.ModelPath, "model", "", "Path to the YAML model document")
	fs.StringVar(&opts.ConfigPath, "config", getEnvOrDefault("TAKEOFF_CONFIG", "takeoff.yaml"), "Path to the config file")
	fs.StringVar(&opts.StatePath, "state", "", "Identifier state path (overrides config)")
	fs.Float64Var(&opts.Epsilon, "epsilon", 0, "Port matching tolerance (overrides config)")
	fs.IntVar(&opts.Cap, "cap", 0, "Connectivity traversal cap (overrides config)")

	fs.Parse(args)
	return opts
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func loadConfig(opts *cliOptions) config.Config {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fatal("config: %v", err)
	}
	if opts.StatePath != "" {
		cfg.StatePath = opts.StatePath
	}
	if opts.Epsilon > 0 {
		cfg.Epsilon = opts.Epsilon
	}
	if opts.Cap > 0 {
		cfg.TraversalCap = opts.Cap
	}
	if err := cfg.Validate(); err != nil {
		fatal("config: %v", err)
	}
	return cfg
}

func buildModel(opts *cliOptions, cfg config.Config) *provider.MemoryModel {
	req := &validation.ScanRequest{
		ModelPath:    opts.ModelPath,
		StatePath:    cfg.StatePath,
		Epsilon:      cfg.Epsilon,
		TraversalCap: cfg.TraversalCap,
	}
	if err := validation.ValidateScanRequest(req); err != nil {
		fatal("invalid request: %v", err)
	}

	doc, err := provider.LoadDocument(opts.ModelPath)
	if err != nil {
		fatal("loading model: %v", err)
	}
	m, err := doc.Build()
	if err != nil {
		fatal("building model: %v", err)
	}
	m.SetPositionEpsilon(cfg.Epsilon)
	return m
}

// newStore builds the identifier store, sealed with a passphrase-derived key
// when the config names a passphrase environment variable. The pbkdf2 salt
// lives next to the state file.
func newStore(cfg config.Config) *identity.Store {
	pass := cfg.Passphrase()
	if pass == "" {
		return identity.NewStore(cfg.StatePath)
	}

	salt, err := loadOrCreateSalt(cfg.StatePath + ".salt")
	if err != nil {
		fatal("state salt: %v", err)
	}
	engine, err := encryption.NewEngineFromPassphrase(pass, salt)
	if err != nil {
		fatal("state encryption: %v", err)
	}
	return identity.NewEncryptedStore(cfg.StatePath, engine)
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != encryption.SaltSize {
			return nil, fmt.Errorf("salt file %s has wrong size", path)
		}
		return salt, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	salt = make([]byte, encryption.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

func handleRun(args []string) {
	opts := parseFlags("run", args)
	if opts.ModelPath == "" {
		fatal("run: --model is required")
	}

	cfg := loadConfig(opts)
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	m := buildModel(opts, cfg)
	trail := audit.NewAuditLogger(cfg.AuditBufferSize)
	registry := metrics.NewRegistry()

	engine := scan.NewEngine(m, newStore(cfg), logger)
	engine.SetTraversalCap(cfg.TraversalCap)
	engine.SetAudit(trail)
	engine.SetMetrics(registry)

	report, err := engine.Run(nil)
	if report != nil {
		renderReport(os.Stdout, report)
	}
	if err != nil {
		fatal("run: %v", err)
	}
}

func handleGroups(args []string) {
	opts := parseFlags("groups", args)
	if opts.ModelPath == "" {
		fatal("groups: --model is required")
	}

	cfg := loadConfig(opts)
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	m := buildModel(opts, cfg)

	grouper := grouping.NewGrouper(m, logger)
	grouper.SetTraversalCap(cfg.TraversalCap)
	labels, err := grouper.Group(m.ComponentIDs())
	if err != nil {
		fatal("groups: %v", err)
	}

	byLabel := make(map[string][]model.ComponentID)
	for id, label := range labels {
		byLabel[label] = append(byLabel[label], id)
	}
	order := make([]string, 0, len(byLabel))
	for label := range byLabel {
		order = append(order, label)
	}
	sort.Strings(order)

	for _, label := range order {
		members := byLabel[label]
		sort.Slice(members, func(i, j int) bool {
			return model.NaturalLess(string(members[i]), string(members[j]))
		})
		fmt.Printf("group %s (%d components)\n", label, len(members))
		for _, id := range members {
			fmt.Printf("  %s\n", id)
		}
	}
}

func handleClearIDs(args []string) {
	opts := parseFlags("clear-ids", args)
	cfg := loadConfig(opts)

	store := newStore(cfg)
	state, err := store.Load()
	if err != nil {
		fatal("clear-ids: %v", err)
	}
	allocator := identity.NewAllocator(state)
	cleared := allocator.Len()
	allocator.ClearAll()
	if err := store.Save(allocator.State()); err != nil {
		fatal("clear-ids: %v", err)
	}
	fmt.Printf("cleared %d identifier assignments at %s\n", cleared, store.Path())
}
