package conf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel/trace"

	"github.com/zeptools/gw-dispatch/apicall"
	"github.com/zeptools/gw-dispatch/apis/backend"
	"github.com/zeptools/gw-dispatch/db"
	"github.com/zeptools/gw-dispatch/db/kvdb"
	"github.com/zeptools/gw-dispatch/db/kvdb/impls/redis"
	"github.com/zeptools/gw-dispatch/db/sqldb"
	"github.com/zeptools/gw-dispatch/db/sqldb/impls/mysql"
	"github.com/zeptools/gw-dispatch/db/sqldb/impls/pgsql"
	"github.com/zeptools/gw-dispatch/db/sqldb/impls/sqlite"
	"github.com/zeptools/gw-dispatch/persist"
	"github.com/zeptools/gw-dispatch/state"
	"github.com/zeptools/gw-dispatch/store"
	"github.com/zeptools/gw-dispatch/svc"
)

var (
	ErrNoKVDBClient     = errors.New("backend KVDB client not ready")
	ErrNoBackendClient  = errors.New("backend api client not ready")
	ErrPersistDisabled  = errors.New("persistence disabled")
	ErrUnknownSQLClient = errors.New("unknown sql database")
)

// DebugOpts - Debug Options
type DebugOpts struct {
	QuietAPICalls bool `json:"quiet_api_calls" env:"DEBUG_QUIET_API_CALLS"` // drop apicall log lines
}

// CoreConf is the content of config/.core.json
type CoreConf struct {
	AppName    string       `json:"app_name" env:"APP_NAME"`
	DebugOpts  DebugOpts    `json:"debug_opts"`
	BackendAPI backend.Conf `json:"backend_api"`
}

// Core - common config and the clients built from it
type Core struct {
	CoreConf
	AppRoot             string                        `json:"-"` // config/ lives here
	RootCtx             context.Context               `json:"-"` // Global Context with RootCancel
	RootCancel          context.CancelFunc            `json:"-"` // CancelFunc for RootCtx
	BackendHttpClient   *http.Client                  `json:"-"` // for requests to the backend api
	BackendClient       *backend.Client               `json:"-"` // PrepareBackendClient
	TracerProvider      trace.TracerProvider          `json:"-"` // optional. global provider when nil
	KVDBConf            kvdb.Conf                     `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client                   `json:"-"` // prepareKVDBClient
	SQLDBConfs          map[string]*sqldb.Conf        `json:"-"` // loadSQLDBConfs
	BackendSQLDBClients map[string]sqldb.Client       `json:"-"` // prepareSQLDBClients
	PersistConf         persist.Conf                  `json:"-"` // PreparePersistor
	Persistor           *persist.Persistor            `json:"-"` // PreparePersistor
	Store               *store.Store[state.RootState] `json:"-"` // PrepareStore

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file, then env overrides
// 3. prepare base fields
// 4. Start ShutdownSignalListener
func (c *Core) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	if err := c.loadJSON(".core.json", &c.CoreConf); err != nil {
		return err
	}
	if err := parseEnv(&c.CoreConf); err != nil {
		return err
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.prepareDefaultFeatures()
	c.startShutdownSignalListener()
	return nil
}

func (c *Core) prepareDefaultFeatures() {
	c.BackendHttpClient = &http.Client{}
}

// loadJSON reads config/<name> into target
func (c *Core) loadJSON(name string, target any) error {
	confFilePath := filepath.Join(c.AppRoot, "config", name)
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, target); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func parseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// sqlEnvPrefix - e.g. "main" -> "SQLDB_MAIN_"
func sqlEnvPrefix(dbName string) string {
	return "SQLDB_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(dbName)) + "_"
}

func (c *Core) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

// PrepareBackendClient to Send Requests to the Backend API
// Prerequisite: BackendHttpClient
func (c *Core) PrepareBackendClient() error {
	if c.BackendHttpClient == nil {
		return errors.New("backend http client not ready")
	}
	c.BackendClient = backend.NewClient(c.BackendHttpClient, &c.BackendAPI)
	log.Printf("[INFO][CORE] backend api client ready host=%q base=%q", c.BackendAPI.Host, c.BackendAPI.BaseURL)
	return nil
}

func (c *Core) PrepareKVDatabase() error {
	// Load KV Database Config File
	err := c.loadKVDBConf()
	if err != nil {
		return err
	}
	if err = c.prepareKVDBClient(); err != nil {
		return err
	}
	return nil
}

func (c *Core) loadKVDBConf() error {
	if err := c.loadJSON(".kv-databases.json", &c.KVDBConf); err != nil {
		return err
	}
	return parseEnv(&c.KVDBConf)
}

func (c *Core) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	// case "memcached"
	default:
		return errors.New("unsupported key-value database type")
	}
	return nil
}

func (c *Core) loadSQLDBConfs() error {
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	if err := c.loadJSON(".sql-databases.json", &c.SQLDBConfs); err != nil {
		return err
	}
	for dbName, sqlDBConf := range c.SQLDBConfs {
		if err := env.ParseWithOptions(sqlDBConf, env.Options{Prefix: sqlEnvPrefix(dbName)}); err != nil {
			return fmt.Errorf("parse env %s: %w", dbName, err)
		}
	}
	return nil
}

// prepareSQLDBClients - Build & Init SQL DB Clients
// Use after loadSQLDBConfs
func (c *Core) prepareSQLDBClients() error {
	c.BackendSQLDBClients = make(map[string]sqldb.Client)

	// Registering Supported Implementations
	pgsql.Register()
	mysql.Register()
	sqlite.Register()

	// Prepare New Clients
	for dbName, sqlDBConf := range c.SQLDBConfs {
		dbClient, err := sqldb.New(sqlDBConf.Type, sqlDBConf)
		if err != nil {
			return err
		}
		if err = dbClient.Init(); err != nil {
			return fmt.Errorf("%s: %w", dbName, err)
		}
		c.BackendSQLDBClients[dbName] = dbClient
	}
	return nil
}

// PrepareSQLDatabases for SQL DB Clients
func (c *Core) PrepareSQLDatabases() error {
	// Load SQL Databases Config File
	err := c.loadSQLDBConfs()
	if err != nil {
		return err
	}
	if len(c.SQLDBConfs) == 0 {
		return nil
	}
	return c.prepareSQLDBClients()
}

// PreparePersistor builds the state Persistor from config/.persist.json and registers it as a service.
// Returns ErrPersistDisabled when no backend is configured.
// Prerequisite: BackendKVDBClient or BackendSQLDBClients, depending on the backend
func (c *Core) PreparePersistor() error {
	if err := c.loadJSON(".persist.json", &c.PersistConf); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := parseEnv(&c.PersistConf); err != nil {
		return err
	}
	var storage persist.Storage
	switch c.PersistConf.Backend {
	case "":
		return ErrPersistDisabled
	case "kv":
		if c.BackendKVDBClient == nil {
			return ErrNoKVDBClient
		}
		storage = persist.NewKVStorage(c.BackendKVDBClient, c.PersistConf.TTL())
	case "sql":
		client, ok := c.BackendSQLDBClients[c.PersistConf.SQLDatabase]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownSQLClient, c.PersistConf.SQLDatabase)
		}
		sqlStorage, err := persist.NewSQLStorage(c.RootCtx, client)
		if err != nil {
			return err
		}
		storage = sqlStorage
	default:
		return fmt.Errorf("unsupported persist backend: %s", c.PersistConf.Backend)
	}
	p, err := persist.NewPersistor(c.RootCtx, storage, &c.PersistConf)
	if err != nil {
		return err
	}
	c.Persistor = p
	c.AddService(p)
	return nil
}

// PrepareStore builds the Store with the apicall middleware.
// With a Persistor, the saved session is restored first and the Persistor is attached
// Prerequisite: BackendClient
func (c *Core) PrepareStore() error {
	if c.BackendClient == nil {
		return ErrNoBackendClient
	}
	initial := state.Initial()
	if c.Persistor != nil {
		snap, found, err := c.Persistor.Rehydrate(c.RootCtx)
		if err != nil {
			log.Printf("[WARN][CORE] cannot rehydrate state: %v", err)
		} else if found {
			initial = initial.WithPersisted(snap)
			log.Println("[INFO][CORE] state rehydrated")
		}
	}
	opts := []apicall.Option{}
	if c.TracerProvider != nil {
		opts = append(opts, apicall.WithTracerProvider(c.TracerProvider))
	}
	if c.DebugOpts.QuietAPICalls {
		opts = append(opts, apicall.WithLogf(nil))
	}
	c.Store = store.New(state.Reduce, initial, apicall.New(c.BackendClient, opts...))
	if c.Persistor != nil {
		if err := c.Persistor.Attach(c.Store); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		db.CloseClient("kvdb:"+c.KVDBConf.Type, c.BackendKVDBClient)
	}
	for name, sqlDBClient := range c.BackendSQLDBClients {
		db.CloseClient(sqlDBClient.GetConf().Type+":"+name, sqlDBClient)
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
