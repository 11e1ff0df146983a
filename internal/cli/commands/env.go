package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/boxoffice-dev/boxoffice/internal/apiclient"
	"github.com/boxoffice-dev/boxoffice/internal/config"
	"github.com/boxoffice-dev/boxoffice/internal/logger"
	"github.com/boxoffice-dev/boxoffice/internal/session"
)

// GlobalOptions holds the root command's persistent flags
type GlobalOptions struct {
	Console bool
	APIURL  string
	Store   string
	Verbose bool
}

// Env is everything a command needs to talk to the API with the saved
// session
type Env struct {
	Variant     session.Variant
	Store       session.Store
	API         *apiclient.Client
	Manager     *session.Manager
	FrontendURL string
	Out         io.Writer
}

// LoadEnv builds an Env from configuration and flags
func LoadEnv(g *GlobalOptions, out io.Writer) (*Env, error) {
	name := session.Storefront().Name
	if g.Console {
		name = session.Console().Name
	}

	cfg, err := config.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if g.APIURL != "" {
		cfg.API.URL = g.APIURL
	}
	if g.Store != "" {
		cfg.Session.Store = g.Store
	}

	level := "warn"
	if g.Verbose {
		level = cfg.Logging.Level
	}
	log := logger.New(level, "console", os.Stderr)

	variant, err := session.VariantNamed(cfg.Variant)
	if err != nil {
		return nil, err
	}

	store, err := session.OpenStore(cfg.Session.Store, cfg.Session.Path, variant.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return newEnv(variant, store, cfg.API.URL, frontendURL(cfg.Frontend.ListenAddr), cfg.Session.RevalidateInterval, out, log)
}

func newEnv(variant session.Variant, store session.Store, apiURL, frontend string, interval time.Duration, out io.Writer, log zerolog.Logger) (*Env, error) {
	httpClient := apiclient.NewHTTPClient()
	api := apiclient.New(apiURL, httpClient)

	manager := session.NewManager(variant, store, api, &terminalNavigator{out: out}, log,
		session.WithRevalidateInterval(interval))
	if err := manager.Install(httpClient); err != nil {
		return nil, err
	}

	return &Env{
		Variant:     variant,
		Store:       store,
		API:         api,
		Manager:     manager,
		FrontendURL: frontend,
		Out:         out,
	}, nil
}

// Close stops the session timer and releases the store
func (e *Env) Close() {
	e.Manager.Stop()
	if c, ok := e.Store.(io.Closer); ok {
		c.Close()
	}
}

// frontendURL turns a listen address into a browsable URL
func frontendURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// terminalNavigator reports an ended session on the terminal. There is no
// page to leave, so the login location is simply the login command.
type terminalNavigator struct {
	mu       sync.Mutex
	out      io.Writer
	location string
}

func (n *terminalNavigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}

func (n *terminalNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.location = target
	fmt.Fprintln(n.out, "Your session has expired. Run 'boxoffice login' to sign in again.")
}

// requireSession fails with a hint when nothing is saved
func (e *Env) requireSession() (session.Session, error) {
	sess, ok := e.Manager.GetSession()
	if !ok || !e.Manager.Authorized() {
		return session.Session{}, fmt.Errorf("not logged in. Please run 'boxoffice login' first")
	}
	return sess, nil
}
