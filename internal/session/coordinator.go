package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultRevalidateInterval is how often the Coordinator re-checks the session
const DefaultRevalidateInterval = 30 * time.Second

// Coordinator wires the authorizing transport and the periodic
// re-validation job. Install may be called from any number of entry
// points; only the first successful call has an effect.
type Coordinator struct {
	mu        sync.Mutex
	installed bool

	transport   *Transport
	validator   *Validator
	invalidator *Invalidator
	role        string
	interval    time.Duration
	scheduler   *cron.Cron
	logger      zerolog.Logger
}

// NewCoordinator creates a coordinator. role is the role the periodic check
// requires; interval defaults to DefaultRevalidateInterval.
func NewCoordinator(transport *Transport, validator *Validator, invalidator *Invalidator, role string, interval time.Duration, logger zerolog.Logger) *Coordinator {
	if interval <= 0 {
		interval = DefaultRevalidateInterval
	}
	return &Coordinator{
		transport:   transport,
		validator:   validator,
		invalidator: invalidator,
		role:        role,
		interval:    interval,
		logger:      logger,
	}
}

// Install wraps client's transport with the authorizing transport and
// starts the re-validation job. Once a call has succeeded, later calls
// return nil without registering anything. A failed call leaves nothing
// installed and may be retried.
func (c *Coordinator) Install(client *http.Client) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.installed {
		return nil
	}
	if err := c.install(client); err != nil {
		return err
	}
	c.installed = true
	return nil
}

func (c *Coordinator) install(client *http.Client) error {
	if client == nil {
		return fmt.Errorf("http client is required")
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(fmt.Sprintf("@every %s", c.interval), c.Revalidate); err != nil {
		return fmt.Errorf("failed to schedule session re-validation: %w", err)
	}

	c.transport.Base = client.Transport
	client.Transport = c.transport

	c.Revalidate()

	c.scheduler = scheduler
	scheduler.Start()

	c.logger.Debug().Dur("interval", c.interval).Msg("Session hooks installed")
	return nil
}

// Revalidate runs one periodic check. A session that was usable and no
// longer is gets the same treatment as one rejected by the API. A storage
// fault is not evidence either way and leaves the session alone.
func (c *Coordinator) Revalidate() {
	expired, err := c.invalidator.Recheck("periodic re-validation failed", func() (bool, error) {
		return c.validator.Check(c.role)
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Session re-validation skipped")
		return
	}
	if expired {
		c.logger.Info().Msg("Session no longer valid")
	}
}

// Jobs returns the number of scheduled re-validation jobs
func (c *Coordinator) Jobs() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scheduler == nil {
		return 0
	}
	return len(c.scheduler.Entries())
}

// Stop halts the re-validation job and waits for a running check to finish
func (c *Coordinator) Stop() {
	c.mu.Lock()
	scheduler := c.scheduler
	c.mu.Unlock()

	if scheduler == nil {
		return
	}
	<-scheduler.Stop().Done()
}
