// Package main dispatches one API-call action through the full stack and
// prints the call result with the resulting state.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeptools/gw-dispatch/actions"
	"github.com/zeptools/gw-dispatch/conf"
)

type config struct {
	Root        string // dir holding config/
	Host        string // overrides backend_api.host
	Endpoint    string
	Method      string
	Success     string
	Failure     string
	Body        string // JSON
	BodyFile    string // raw body, e.g. a spreadsheet for bulk uploads
	Query       queryFlag
	Toast       string
	ContentType string
	Fixture     bool
	FixtureName string
	Silent      bool
}

// queryFlag collects repeated -q key=value pairs
type queryFlag map[string]any

func (q queryFlag) String() string {
	pairs := make([]string, 0, len(q))
	for k, v := range q {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (q queryFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	q[k] = v
	return nil
}

func parseConfig(fs *flag.FlagSet, args []string) (config, error) {
	cfg := config{Query: queryFlag{}}
	fs.StringVar(&cfg.Root, "root", ".", "app root containing config/")
	fs.StringVar(&cfg.Host, "host", "", "backend host override (scheme://host[:port])")
	fs.StringVar(&cfg.Endpoint, "endpoint", "", "endpoint relative to the base url")
	fs.StringVar(&cfg.Method, "method", "GET", "HTTP method")
	fs.StringVar(&cfg.Success, "success", "", "success action type")
	fs.StringVar(&cfg.Failure, "failure", "", "failure action type")
	fs.StringVar(&cfg.Body, "body", "", "JSON request body")
	fs.StringVar(&cfg.BodyFile, "body-file", "", "raw request body file")
	fs.Var(cfg.Query, "q", "query parameter key=value (repeatable)")
	fs.StringVar(&cfg.Toast, "toast", "", "toast message shown on success")
	fs.StringVar(&cfg.ContentType, "content-type", "", "response content type, e.g. application/pdf")
	fs.BoolVar(&cfg.Fixture, "fixture", false, "read the response from a static fixture")
	fs.StringVar(&cfg.FixtureName, "fixture-name", "", "fixture file name (default: derived from endpoint)")
	fs.BoolVar(&cfg.Silent, "silent", false, "suppress toast and alert actions")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.Body != "" && cfg.BodyFile != "" {
		return config{}, errors.New("-body and -body-file are exclusive")
	}
	return cfg, nil
}

func (cfg config) descriptor() (*actions.CallAPI, error) {
	opts := []actions.CallOption{actions.WithMethod(cfg.Method)}
	switch {
	case cfg.Body != "":
		var body any
		if err := json.Unmarshal([]byte(cfg.Body), &body); err != nil {
			return nil, fmt.Errorf("-body: %w", err)
		}
		opts = append(opts, actions.WithBody(body))
	case cfg.BodyFile != "":
		raw, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, actions.WithBody(raw))
	}
	if len(cfg.Query) > 0 {
		opts = append(opts, actions.WithQuery(cfg.Query))
	}
	if cfg.Toast != "" {
		opts = append(opts, actions.WithToast(cfg.Toast))
	}
	if cfg.ContentType != "" {
		opts = append(opts, actions.WithContentType(cfg.ContentType))
	}
	if cfg.Fixture {
		opts = append(opts, actions.WithFixture(cfg.FixtureName))
	}
	if cfg.Silent {
		opts = append(opts, actions.Silent())
	}
	return actions.NewCallAPI(cfg.Endpoint, actions.Type(cfg.Success), actions.Type(cfg.Failure), opts...)
}

type output struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	State  any    `json:"state"`
}

func exists(root, name string) bool {
	_, err := os.Stat(filepath.Join(root, "config", name))
	return err == nil
}

func run(parent context.Context, cfg config, out io.Writer) error {
	d, err := cfg.descriptor()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	core := &conf.Core{}
	if err = core.BaseInit(cfg.Root, ctx, cancel); err != nil {
		return err
	}
	defer core.ResourceCleanUp()
	if cfg.Host != "" {
		core.BackendAPI.Host = cfg.Host
	}
	if err = core.PrepareBackendClient(); err != nil {
		return err
	}
	if exists(cfg.Root, ".kv-databases.json") {
		if err = core.PrepareKVDatabase(); err != nil {
			return err
		}
	}
	if exists(cfg.Root, ".sql-databases.json") {
		if err = core.PrepareSQLDatabases(); err != nil {
			return err
		}
	}
	if err = core.PreparePersistor(); err != nil && !errors.Is(err, conf.ErrPersistDisabled) {
		return err
	}
	if err = core.PrepareStore(); err != nil {
		return err
	}
	if err = core.StartServices(); err != nil {
		return err
	}

	result, callErr := core.Store.Dispatch(ctx, actions.Call(d))

	core.StopServices()
	if err = core.WaitServicesDone(); err != nil {
		log.Printf("[WARN] service shutdown: %v", err)
	}

	o := output{Result: result, State: core.Store.GetState()}
	if callErr != nil {
		o.Error = callErr.Error()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err = enc.Encode(o); err != nil {
		return err
	}
	return callErr
}

func main() {
	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if err = run(context.Background(), cfg, os.Stdout); err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}
